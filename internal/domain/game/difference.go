package game

// Difference is one difference site: a zone rectangle in percentage units
// with the change that was painted into it.
type Difference struct {
	Zone        string  `json:"zone"`
	XMin        float64 `json:"x_min"`
	XMax        float64 `json:"x_max"`
	YMin        float64 `json:"y_min"`
	YMax        float64 `json:"y_max"`
	Description string  `json:"description"`
	Found       bool    `json:"found"`
}

// Contains reports whether (x, y) lies inside the rectangle, edges included.
func (d Difference) Contains(x, y float64) bool {
	return x >= d.XMin && x <= d.XMax && y >= d.YMin && y <= d.YMax
}

// CloneDifferences returns an independent copy with every found flag cleared.
func CloneDifferences(in []Difference) []Difference {
	out := make([]Difference, len(in))
	copy(out, in)
	for i := range out {
		out[i].Found = false
	}
	return out
}

func CountFound(diffs []Difference) int {
	n := 0
	for _, d := range diffs {
		if d.Found {
			n++
		}
	}
	return n
}
