package console

import (
	"context"
	"sync"

	"garageadmin/internal/garage"
)

type DirectoryAPI interface {
	ListAllGarages(ctx context.Context) ([]garage.Garage, error)
}

// Directory holds the full garage list and answers filter queries locally.
type Directory struct {
	api DirectoryAPI

	mu      sync.RWMutex
	garages []garage.Garage
}

func NewDirectory(api DirectoryAPI) *Directory {
	return &Directory{api: api}
}

func (d *Directory) Refresh(ctx context.Context) error {
	garages, err := d.api.ListAllGarages(ctx)
	if err != nil {
		return err
	}

	d.mu.Lock()
	d.garages = garages
	d.mu.Unlock()
	return nil
}

// View returns the garages matching f and the counts over the whole list.
func (d *Directory) View(f garage.Filter) ([]garage.Garage, garage.Summary) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return garage.FilterGarages(d.garages, f), garage.Summarize(d.garages)
}
