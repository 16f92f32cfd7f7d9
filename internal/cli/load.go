package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/gridkit/pkg/config"
	"github.com/matzehuels/gridkit/pkg/errors"
	"github.com/matzehuels/gridkit/pkg/grid"
	"github.com/matzehuels/gridkit/pkg/grouping"
	"github.com/matzehuels/gridkit/pkg/layout"
	"github.com/matzehuels/gridkit/pkg/records"
)

// sourceOpts holds the flags shared by every command that loads records.
type sourceOpts struct {
	config     string
	by         []string
	closed     bool
	openBelow  int
	columns    []string
	mode       string
	width      int
	idField    string
	inferTypes bool
}

func (o *sourceOpts) register(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVarP(&o.config, "config", "c", "", "config file (default: ./"+config.FileName+" when present)")
	f.StringSliceVarP(&o.by, "by", "b", nil, "group by these fields, outermost first")
	f.BoolVar(&o.closed, "closed", false, "start with every group closed")
	f.IntVar(&o.openBelow, "open-below", 0, "start groups with fewer rows than this open")
	f.StringSliceVar(&o.columns, "columns", nil, "columns to show, in order (default: all fields)")
	f.StringVarP(&o.mode, "mode", "m", "", "layout mode: fitData, fitDataFill, fitDataTable, fitDataStretch, fitColumns")
	f.IntVarP(&o.width, "width", "w", 0, "viewport width in cells")
	f.StringVar(&o.idField, "id-field", records.DefaultIDField, "record field holding row IDs")
	f.BoolVar(&o.inferTypes, "infer-types", false, "convert numeric and boolean CSV cells")

	cmd.ValidArgsFunction = completeRecordFiles
	_ = cmd.MarkFlagFilename("config", "toml")
	_ = cmd.RegisterFlagCompletionFunc("mode", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		modes := make([]string, len(layout.Modes))
		for i, m := range layout.Modes {
			modes[i] = m.String()
		}
		return modes, cobra.ShellCompDirectiveNoFileComp
	})
}

// resolveConfig loads the explicit config file, the one in the working
// directory, or the defaults, in that order.
func (o *sourceOpts) resolveConfig(ctx context.Context) (*config.Config, error) {
	logger := loggerFromContext(ctx)
	path := o.config
	if path == "" {
		if _, err := os.Stat(config.FileName); err != nil {
			logger.Debug("no config file, using defaults")
			return config.Default(), nil
		}
		path = config.FileName
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	logger.Debug("loaded config", "path", path)
	return cfg, nil
}

// apply overrides config values with the flags that were set.
func (o *sourceOpts) apply(cfg *config.Config) {
	if len(o.by) > 0 {
		cfg.Grouping.By = o.by
		cfg.Grouping.StartOpen = nil
		cfg.Grouping.Headers = nil
		cfg.Grouping.Values = nil
	}
	if o.closed {
		cfg.Grouping.StartOpen = []bool{false}
		cfg.Grouping.OpenBelow = 0
	}
	if o.openBelow > 0 {
		cfg.Grouping.OpenBelow = o.openBelow
	}
	if o.mode != "" {
		cfg.Layout.Mode = o.mode
	}
	if o.width > 0 {
		cfg.Layout.Width = o.width
	}
}

// selectColumns orders cols by names. Names without a configured column get a
// flexible one.
func selectColumns(cols []*layout.Column, names []string) ([]*layout.Column, error) {
	if len(names) == 0 {
		return cols, nil
	}
	byField := make(map[string]*layout.Column, len(cols))
	for _, c := range cols {
		byField[c.Field] = c
	}
	out := make([]*layout.Column, 0, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if err := errors.ValidateFieldName(n); err != nil {
			return nil, err
		}
		if c, ok := byField[n]; ok {
			out = append(out, c)
			continue
		}
		out = append(out, &layout.Column{Field: n, Title: n})
	}
	return out, nil
}

// loadEngine reads the records at path and builds an engine from config and
// flags. Files larger than largeFileBytes show a spinner while loading.
func (c *CLI) loadEngine(ctx context.Context, path string, o *sourceOpts) (*grid.Engine, error) {
	logger := loggerFromContext(ctx)

	cfg, err := o.resolveConfig(ctx)
	if err != nil {
		return nil, err
	}
	o.apply(cfg)

	gcfg, err := cfg.GroupingConfig()
	if err != nil {
		return nil, err
	}
	gcfg.Logger = logger

	prog := newProgress(logger)
	rows, err := c.readRecords(ctx, path, records.Options{IDField: o.idField, InferTypes: o.inferTypes})
	if err != nil {
		return nil, err
	}

	cols, err := cfg.LayoutColumns()
	if err != nil {
		return nil, err
	}
	if len(cols) == 0 {
		cols = config.InferColumns(rows)
	}
	if cols, err = selectColumns(cols, o.columns); err != nil {
		return nil, err
	}

	opts := cfg.GridOptions()
	opts.Columns = cols
	opts.Logger = logger
	engine, err := grid.New(gcfg, opts)
	if err != nil {
		return nil, err
	}
	engine.Load(rows)

	st := engine.Stats()
	prog.done("Grouped %d rows into %d groups", st.Rows, st.Groups)
	return engine, nil
}

func (c *CLI) readRecords(ctx context.Context, path string, opts records.Options) ([]*grouping.Row, error) {
	info, err := os.Stat(path)
	if err != nil || info.Size() < largeFileBytes {
		return records.Import(path, opts)
	}

	sp := newSpinnerWithContext(ctx, os.Stderr, fmt.Sprintf("Loading %s", filepath.Base(path)))
	sp.Start()
	rows, err := records.Import(path, opts)
	if err != nil {
		sp.StopWithError(fmt.Sprintf("Failed to load %s", path))
		return nil, err
	}
	sp.Stop()
	loggerFromContext(ctx).Debugf("Loaded %s from %s", plural(len(rows), "record"), path)
	return rows, nil
}

// resolvePath turns slash-separated path segments into group keys by
// comparing the printed form of each key.
func resolvePath(engine *grid.Engine, slashPath string) ([]any, error) {
	segs := strings.Split(slashPath, "/")
	groups := engine.Tree().Groups()
	path := make([]any, 0, len(segs))
	for _, seg := range segs {
		var next *grouping.Node
		for _, g := range groups {
			if fmt.Sprint(g.Key()) == seg {
				next = g
				break
			}
		}
		if next == nil {
			return nil, errors.New(errors.ErrCodeNotFound, "no group %q in path %q", seg, slashPath)
		}
		path = append(path, next.Key())
		groups = next.SubGroups()
	}
	return path, nil
}

// basePath strips the extension from the input file name.
func basePath(input string) string {
	return strings.TrimSuffix(input, filepath.Ext(input))
}
