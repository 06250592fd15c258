package service

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"product-image-studio/collection"
	"product-image-studio/logging"
	"product-image-studio/utils"
)

// ErrNoConverter is returned for HEIC images when no Converter is configured.
var ErrNoConverter = errors.New("no HEIC converter configured")

// Converter turns HEIC/HEIF bytes into a format DecodeImage understands.
type Converter interface {
	ConvertHEIC(ctx context.Context, data []byte) ([]byte, error)
}

// ImageLoaderOptions configures an ImageLoader.
type ImageLoaderOptions struct {
	Concurrency int
	Timeout     time.Duration
	Cache       *DiskCache
	Converter   Converter
	Logger      *logging.Logger
}

// ImageLoader fetches, decodes and optimizes images. It is the artifact loader
// of every collection; one download per reference is in flight at a time, across
// all collections.
type ImageLoader struct {
	fetcher ByteFetcher
	opts    ImageLoaderOptions
	log     *logging.Logger
	group   singleflight.Group
}

// Ensure ImageLoader implements collection.ArtifactLoader
var _ collection.ArtifactLoader = (*ImageLoader)(nil)

// NewImageLoader creates an ImageLoader.
func NewImageLoader(fetcher ByteFetcher, opts ImageLoaderOptions) *ImageLoader {
	if opts.Concurrency <= 0 {
		opts.Concurrency = 6
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 20 * time.Second
	}
	log := opts.Logger
	if log == nil {
		log = logging.Nop()
	}
	return &ImageLoader{fetcher: fetcher, opts: opts, log: log}
}

// LoadArtifacts resolves refs in order. Failed references leave a nil slot.
func (l *ImageLoader) LoadArtifacts(ctx context.Context, refs []string) ([]*collection.Artifact, error) {
	out := make([]*collection.Artifact, len(refs))
	var g errgroup.Group
	g.SetLimit(l.opts.Concurrency)
	for i, ref := range refs {
		i, ref := i, ref
		g.Go(func() error {
			artifact, err := l.load(ctx, ref)
			if err != nil {
				l.log.Warnf("⚠️  Failed to load %s: %v", ref, err)
				return nil
			}
			out[i] = artifact
			return nil
		})
	}
	_ = g.Wait()
	return out, nil
}

func (l *ImageLoader) load(ctx context.Context, ref string) (*collection.Artifact, error) {
	data, err := l.Bytes(ctx, ref)
	if err != nil {
		return nil, err
	}

	if utils.IsHEIC(ref) || isHEICData(data) {
		if l.opts.Converter == nil {
			return nil, ErrNoConverter
		}
		data, err = l.opts.Converter.ConvertHEIC(ctx, data)
		if err != nil {
			return nil, fmt.Errorf("failed to convert HEIC: %w", err)
		}
	}

	img, format, err := DecodeImage(data)
	if err != nil {
		return nil, err
	}
	medium, err := OptimizeImage(img, SizeMedium)
	if err != nil {
		return nil, err
	}
	thumb, err := OptimizeImage(img, SizeThumb)
	if err != nil {
		return nil, err
	}

	bounds := img.Bounds()
	l.log.Debugf("📸 Image decoded: ref=%s format=%s bounds=%v", ref, format, bounds)
	return &collection.Artifact{
		Reference:   ref,
		ContentType: "image/jpeg",
		Width:       bounds.Dx(),
		Height:      bounds.Dy(),
		Data:        medium,
		Thumbnail:   thumb,
	}, nil
}

// Bytes returns the raw bytes of ref from the disk cache or the network.
// Concurrent calls for the same reference share one download.
func (l *ImageLoader) Bytes(ctx context.Context, ref string) ([]byte, error) {
	v, err, _ := l.group.Do(ref, func() (interface{}, error) {
		if l.opts.Cache != nil {
			if data, ok := l.opts.Cache.Get(ref); ok {
				return data, nil
			}
		}

		fetchCtx, cancel := context.WithTimeout(ctx, l.opts.Timeout)
		defer cancel()
		data, err := l.fetcher.FetchBytes(fetchCtx, ref)
		if err != nil {
			return nil, err
		}

		if l.opts.Cache != nil {
			if err := l.opts.Cache.Put(ref, data); err != nil {
				l.log.Warnf("⚠️  %v", err)
			}
		}
		return data, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

// Prefetch downloads refs into the disk cache. onDone is called once per
// reference, from multiple goroutines.
func (l *ImageLoader) Prefetch(ctx context.Context, refs []string, onDone func(ref string, err error)) (fetched, failed int) {
	var ok, bad atomic.Int64
	var g errgroup.Group
	g.SetLimit(l.opts.Concurrency)
	for _, ref := range refs {
		ref := ref
		g.Go(func() error {
			_, err := l.Bytes(ctx, ref)
			if err != nil {
				bad.Add(1)
			} else {
				ok.Add(1)
			}
			if onDone != nil {
				onDone(ref, err)
			}
			return nil
		})
	}
	_ = g.Wait()
	return int(ok.Load()), int(bad.Load())
}
