package reconcile

import (
	"github.com/agentstation/bibmerge/pkg/bibliography"
)

// Union combines datasets by record ID, folding from left to right.
// When an ID occurs in more than one dataset the records are overlaid and
// the earlier dataset's fields win. Records keep the position of their
// first occurrence; records without an ID are always kept. Inputs are not
// modified.
func Union(datasets ...*bibliography.Dataset) *bibliography.Dataset {
	out := bibliography.NewDataset("", nil)
	if len(datasets) == 0 {
		return out
	}

	positions := make(map[string]int)
	for _, ds := range datasets {
		if ds == nil {
			continue
		}
		if out.Name == "" {
			out.Name = ds.Name
		}
		for _, rec := range ds.Records {
			id := rec.ID()
			if id == "" {
				out.Records = append(out.Records, rec.Clone())
				continue
			}
			if pos, ok := positions[id]; ok {
				out.Records[pos] = Overlay(rec, out.Records[pos])
				continue
			}
			positions[id] = len(out.Records)
			out.Records = append(out.Records, rec.Clone())
		}
	}
	return out
}
