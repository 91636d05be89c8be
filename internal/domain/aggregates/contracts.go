package aggregates

// Contract names an aggregate write boundary and the tables it changes
// inside one transaction.
type Contract struct {
	Name   string
	Tables []string
	Notes  string
}

type Aggregate interface {
	Contract() Contract
}

// Touches reports whether the aggregate writes table.
func (c Contract) Touches(table string) bool {
	for _, t := range c.Tables {
		if t == table {
			return true
		}
	}
	return false
}
