package internal

import (
	"sort"

	"github.com/lychee-technology/rowbase"
)

const defaultLoadWindow = 500

// LoadTable copies every row matched by search from source into target, in
// ascending-id windows, without appending to target's transaction log
// (spec §6's bulk-load path bypasses the Writer entirely — it is meant for
// warming a table from a Storage snapshot, not for incremental writes).
// storage, if non-nil, supplies the window size via
// DefaultTransactionSize(); otherwise defaultLoadWindow is used.
func LoadTable(target, source rowbase.Table, search *rowbase.Search, storage rowbase.Storage, progress rowbase.ProgressFunc) error {
	if err := target.Clear(true); err != nil {
		return err
	}

	rows, err := source.Find(search, nil)
	if err != nil {
		return err
	}
	sort.SliceStable(rows, func(i, j int) bool {
		a, _ := rows[i].ID()
		b, _ := rows[j].ID()
		return a < b
	})

	window := defaultLoadWindow
	if storage != nil {
		if w := storage.DefaultTransactionSize(); w > 0 {
			window = w
		}
	}

	total := len(rows)
	for start := 0; start < total; start += window {
		end := start + window
		if end > total {
			end = total
		}
		for _, row := range rows[start:end] {
			if _, err := target.Insert(row.Clone()); err != nil {
				return err
			}
		}
		if progress != nil {
			if progress(rowbase.LoadProgress{Current: end, Total: total}) {
				return nil
			}
		}
	}
	return nil
}
