package collapse

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"cellsplit/fragment"
	"cellsplit/state"
)

// Command describes "collapse" for the command line.
func Command() *cli.Command {
	return &cli.Command{
		Name:   "collapse",
		Usage:  "Puts fragments back together",
		Action: Run,
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "overwrite", Aliases: []string{"o"}, Usage: "overwrite existing output file"},
			&cli.BoolFlag{Name: "cleanup", Usage: "remove root and all fragments after successful collapse"},
			&cli.BoolFlag{Name: "watch", Usage: "keep output up to date while fragments are being edited"},
		},
		ArgsUsage: "PATH",
		CustomHelpTemplate: fmt.Sprintf(`%s
PATH:
    either root fragment "<stem>_gen.<ext>" - output goes to "<stem>.<ext>" next to it,
    or output script path - root fragment is expected next to it
`, cli.CommandHelpTemplate),
	}
}

// TreeCommand describes "tree" for the command line.
func TreeCommand() *cli.Command {
	return &cli.Command{
		Name:      "tree",
		Usage:     "Prints fragments reachable from root fragment",
		Action:    RunTree,
		ArgsUsage: "PATH",
	}
}

// Run is the "collapse" command.
func Run(ctx context.Context, cmd *cli.Command) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("collapse")

	path := cmd.Args().Get(0)
	if len(path) == 0 {
		return errors.New("no root fragment or output has been specified")
	}
	if cmd.Args().Len() > 1 {
		log.Warn("Malformed command line, too many arguments", zap.Strings("ignoring", cmd.Args().Slice()[1:]))
	}

	env.Overwrite = cmd.Bool("overwrite")
	opts := Options{Overwrite: env.Overwrite, Cleanup: cmd.Bool("cleanup")}

	if cmd.Bool("watch") {
		if opts.Cleanup {
			return errors.New("fragments cannot be removed while watching them, drop --cleanup")
		}
		return Watch(ctx, fragment.FS{}, path, opts, env.Log.Named("watch"))
	}

	// when fragments are going away keep them in the report as they were
	if env.Rpt != nil && opts.Cleanup {
		storeTree(ctx, env.Rpt.StoreData, path)
	}

	log.Info("Collapsing fragments", zap.String("path", path), zap.Bool("overwrite", opts.Overwrite), zap.Bool("cleanup", opts.Cleanup))
	start := time.Now()

	res, err := Process(ctx, fragment.FS{}, path, opts, log)
	if err != nil {
		return fmt.Errorf("unable to collapse fragments: %w", err)
	}

	env.Rpt.Store("output/"+filepath.Base(res.Output), res.Output)
	if !opts.Cleanup {
		env.Rpt.Store("fragments/"+filepath.Base(res.Root), res.Root)
	}

	log.Info("Collapse completed",
		zap.String("to", res.Output),
		zap.Int("fragments", res.Fragments),
		zap.Bool("cleanup", opts.Cleanup),
		zap.Duration("elapsed", time.Since(start)))
	return nil
}

// storeTree saves current content of every fragment for the report.
func storeTree(ctx context.Context, store func(string, []byte), path string) {
	root, _, err := locate(fragment.FS{}, path)
	if err != nil {
		return
	}
	tree, err := Scan(ctx, fragment.FS{}, root)
	if err != nil {
		return
	}
	for _, name := range tree.Names() {
		if data, err := os.ReadFile(name); err == nil {
			store("fragments/"+filepath.Base(name), data)
		}
	}
}

// RunTree is the "tree" command, it prints fragments reachable from root.
func RunTree(ctx context.Context, cmd *cli.Command) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("tree")

	path := cmd.Args().Get(0)
	if len(path) == 0 {
		return errors.New("no root fragment has been specified")
	}

	root, _, err := locate(fragment.FS{}, path)
	if err != nil {
		return fmt.Errorf("unable to find root fragment: %w", err)
	}
	tree, err := Scan(ctx, fragment.FS{}, root)
	if err != nil {
		return fmt.Errorf("unable to scan fragments: %w", err)
	}
	log.Debug("Fragment tree scanned", zap.String("root", root), zap.Int("fragments", len(tree.Names())))

	w := cmd.Root().Writer
	if w == nil {
		w = os.Stdout
	}
	return tree.Dump(w)
}
