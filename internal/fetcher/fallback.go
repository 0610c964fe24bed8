package fetcher

import (
	"context"
	"errors"

	"github.com/ramkansal/leadercrawl/pkg/plugin"
)

// Fallback tries Primary first and, if it fails, Secondary.
type Fallback struct {
	Primary   plugin.Fetcher
	Secondary plugin.Fetcher
}

func (f *Fallback) Name() string { return f.Primary.Name() + "+" + f.Secondary.Name() }

func (f *Fallback) Fetch(ctx context.Context, url string) (*plugin.PageData, error) {
	page, err := f.Primary.Fetch(ctx, url)
	if err == nil {
		return page, nil
	}
	if ctx.Err() != nil {
		return page, err
	}
	page2, err2 := f.Secondary.Fetch(ctx, url)
	if err2 != nil {
		return page2, errors.Join(err, err2)
	}
	return page2, nil
}

func (f *Fallback) Close() error {
	return errors.Join(f.Primary.Close(), f.Secondary.Close())
}
