package expand

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"golang.org/x/text/encoding/ianaindex"

	"cellsplit/fragment"
	"cellsplit/state"
)

// Command describes "expand" for the command line.
func Command() *cli.Command {
	return &cli.Command{
		Name:   "expand",
		Usage:  "Splits script into fragments",
		Action: Run,
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "overwrite", Aliases: []string{"o"}, Usage: "remove fragments of previous run and overwrite existing files"},
			&cli.BoolFlag{Name: "strict", Usage: "fail on unbalanced blocks instead of best effort split"},
			&cli.StringFlag{Name: "charset",
				Usage: "decode script from `ENCODING` (see IANA.org for character set names), UTF-8 if absent"},
		},
		ArgsUsage: "INPUT",
		CustomHelpTemplate: fmt.Sprintf(`%s
INPUT:
    path to cell-mode script, fragments are created next to it:
        "<stem>_gen.<ext>" - root fragment
        "<stem>_<slug>_<N>.<ext>" - fragment for a single cell or block body

    Cells start with "%%%%" lines, blocks with for, while, parfor, if and try
    (keywords are configurable). Every fragment starts with a header comment
    and references its children with marker lines.
`, cli.CommandHelpTemplate),
	}
}

// Run is the "expand" command.
func Run(ctx context.Context, cmd *cli.Command) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("expand")

	src := cmd.Args().Get(0)
	if len(src) == 0 {
		return errors.New("no input script has been specified")
	}
	if cmd.Args().Len() > 1 {
		log.Warn("Malformed command line, too many sources", zap.Strings("ignoring", cmd.Args().Slice()[1:]))
	}

	env.Overwrite = cmd.Bool("overwrite")
	env.Strict = cmd.Bool("strict") || env.Cfg.Script.Strict

	if cs := cmd.String("charset"); len(cs) > 0 {
		enc, err := ianaindex.IANA.Encoding(cs)
		if err != nil || enc == nil {
			log.Warn("Unknown character set specification. Ignoring...", zap.String("charset", cs), zap.Error(err))
		} else {
			env.Charset = enc
			n, _ := ianaindex.IANA.Name(enc)
			log.Debug("Decoding script source", zap.String("charset", n))
		}
	}

	opts := Options{
		Dialect:     env.Cfg.Script.Dialect(),
		Overwrite:   env.Overwrite,
		Strict:      env.Strict,
		SlugLimit:   env.Cfg.Script.SlugLimit,
		BlockIndent: env.Cfg.Script.BlockIndent,
		Charset:     env.Charset,
	}

	if abs, err := filepath.Abs(src); err == nil {
		env.Rpt.Store("source/"+filepath.Base(abs), abs)
	}

	log.Info("Expanding script", zap.String("source", src), zap.Bool("overwrite", opts.Overwrite), zap.Bool("strict", opts.Strict))
	start := time.Now()

	res, err := Process(ctx, fragment.FS{}, src, opts, log)
	if err != nil {
		return fmt.Errorf("unable to expand script: %w", err)
	}

	env.Rpt.Store("fragments/"+filepath.Base(res.Root), res.Root)
	for _, name := range res.Fragments {
		env.Rpt.Store("fragments/"+filepath.Base(name), name)
	}

	log.Info("Expand completed",
		zap.String("root", res.Root),
		zap.Int("fragments", len(res.Fragments)),
		zap.Int("lines", res.Lines),
		zap.Duration("elapsed", time.Since(start)))
	return nil
}
