package iterator

import (
	"github.com/chazu/ifcgeom/pkg/config"
	"github.com/chazu/ifcgeom/pkg/element"
	"github.com/chazu/ifcgeom/pkg/errors"
	"github.com/chazu/ifcgeom/pkg/geom"
	"github.com/chazu/ifcgeom/pkg/ifc"
	"go.uber.org/zap"
)

// worker converts candidates on one goroutine.
type worker interface {
	convert(product *ifc.Entity) ([]element.Stage, error)
}

// converterWorker owns a kernel and a converter with its caches.
type converterWorker struct {
	conv   *geom.Converter
	output string
	log    *zap.SugaredLogger
}

func (it *Iterator) geomWorker(id int) (worker, error) {
	k, err := it.opts.Kernel()
	if err != nil {
		return nil, errors.Wrap(err, "creating kernel")
	}
	log := it.log.With("worker", id)
	conv := geom.NewConverter(it.opts.File, it.opts.Graph, k, it.opts.Settings, log)
	conv.SetHierarchy(it.index)
	return &converterWorker{conv: conv, output: it.opts.Output, log: log}, nil
}

func (w *converterWorker) convert(product *ifc.Entity) ([]element.Stage, error) {
	natives, err := w.conv.Convert(product)
	if err != nil {
		return nil, err
	}
	out := make([]element.Stage, 0, len(natives))
	for _, n := range natives {
		switch w.output {
		case config.OutputNative:
			out = append(out, n)
		case config.OutputSerialized:
			s, err := element.NewSerialized(n)
			if err != nil {
				return nil, err
			}
			out = append(out, s)
		default:
			t, err := w.conv.Triangulate(n)
			if err != nil {
				return nil, err
			}
			out = append(out, t)
		}
	}
	return out, nil
}
