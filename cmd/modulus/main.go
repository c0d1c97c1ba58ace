// Command modulus checks Modulus module files: it declares their symbols,
// attaches their rewrite rules, and runs their eval and assert commands.
// It also hosts the interactive shell and a re-check-on-change watch mode.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/modulus-lang/modulus/internal/cli"
	"github.com/modulus-lang/modulus/internal/command"
	"github.com/modulus-lang/modulus/internal/debug"
	"github.com/modulus-lang/modulus/internal/repl"
	"github.com/modulus-lang/modulus/internal/watch"
)

func main() {
	var (
		showVersion = flag.Bool("version", false, "Show version information")
		jsonOutput  = flag.Bool("json", false, "Output version in JSON format")
		verbose     = flag.Bool("verbose", false, "Enable verbose output")
		interactive = flag.Bool("repl", false, "Start the interactive shell after checking the files")
		watchMode   = flag.Bool("watch", false, "Re-check the files whenever they change")
		evalExpr    = flag.String("eval", "", "Normalize a term against the checked files and print it")
		modPath     = flag.String("path", "main", "Module path the declarations live under")
		configPath  = flag.String("config", "", "Path to a modulus.json configuration file")
		initConfig  = flag.Bool("init-config", false, "Write the effective settings to the --config path and exit")
		traceRed    = flag.Bool("trace-reduction", false, "Trace β-steps and rule firings")
		traceMatch  = flag.Bool("trace-matching", false, "Trace rule matching attempts")
		traceConv   = flag.Bool("trace-conversion", false, "Trace conversion checks")
	)

	flag.Parse()

	if *showVersion {
		cli.PrintVersion("modulus", *jsonOutput)
		return
	}

	cfg, err := cli.LoadConfig(*configPath)
	if err != nil {
		cli.ExitWithError("%v", err)
	}

	// Flags take precedence: the file seeds only settings the command line
	// left alone.
	set := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })

	if !set["verbose"] {
		*verbose = *verbose || cfg.Verbose
	}
	if !set["path"] && cfg.ModulePath != "" {
		*modPath = cfg.ModulePath
	}
	if !set["trace-reduction"] {
		*traceRed = *traceRed || cfg.TraceReduction
	}
	if !set["trace-matching"] {
		*traceMatch = *traceMatch || cfg.TraceMatching
	}
	if !set["trace-conversion"] {
		*traceConv = *traceConv || cfg.TraceConversion
	}

	if cfg.WorkDir != "" && cfg.WorkDir != "." {
		if err := os.Chdir(cfg.WorkDir); err != nil {
			cli.ExitWithError("entering work dir: %v", err)
		}
	}

	debug.TraceReduction = *traceRed
	debug.TraceMatching = *traceMatch
	debug.TraceConversion = *traceConv

	if *initConfig {
		path := *configPath
		if path == "" {
			path = "modulus.json"
		}

		out := &cli.Config{
			Verbose:         *verbose,
			Debug:           cfg.Debug,
			ModulePath:      *modPath,
			WorkDir:         cfg.WorkDir,
			TraceReduction:  *traceRed,
			TraceMatching:   *traceMatch,
			TraceConversion: *traceConv,
		}
		if err := out.SaveConfig(path); err != nil {
			cli.ExitWithError("%v", err)
		}

		fmt.Printf("wrote %s\n", path)
		return
	}

	logger := cli.NewLogger(*verbose, cfg.Debug)
	files := flag.Args()

	if len(files) == 0 && !*interactive {
		if cli.IsTerminal(os.Stdin) {
			cli.ExitWithError("no input files (use --repl for the interactive shell)")
		}

		st := command.NewState(*modPath, os.Stdout)
		src, err := io.ReadAll(os.Stdin)
		if err == nil {
			err = command.RunSource(st, "<stdin>", string(src))
		}
		cli.HandleError(err, logger)
		return
	}

	if *watchMode {
		runWatch(*modPath, files, *evalExpr, logger)
		return
	}

	st, err := check(*modPath, files, *evalExpr, logger)
	cli.HandleError(err, logger)

	if *interactive {
		cli.HandleError(repl.Run(st), logger)
	}
}

// check runs every file against a fresh state, then the --eval term if one
// was given.
func check(modPath string, files []string, evalExpr string, logger *cli.Logger) (*command.State, error) {
	st := command.NewState(modPath, os.Stdout)

	for _, file := range files {
		src, err := os.ReadFile(file)
		if err != nil {
			return nil, err
		}

		if err := command.RunSource(st, file, string(src)); err != nil {
			return nil, err
		}

		logger.Info("checked %s", file)
	}

	if evalExpr != "" {
		stmt := "eval " + strings.TrimSpace(evalExpr)
		if !strings.HasSuffix(stmt, ".") {
			stmt += "."
		}

		if err := command.RunSource(st, "<eval>", stmt); err != nil {
			return nil, err
		}
	}

	return st, nil
}

// runWatch re-checks the files on every settled batch of changes, each
// round against a fresh state so re-declarations do not collide.
func runWatch(modPath string, files []string, evalExpr string, logger *cli.Logger) {
	r, err := watch.NewRunner(files, 100*time.Millisecond,
		func(changed []string) {
			for _, p := range changed {
				logger.Info("%s changed", p)
			}

			if _, err := check(modPath, files, evalExpr, logger); err != nil {
				fmt.Fprintln(os.Stderr, err)
			} else {
				fmt.Fprintln(os.Stderr, "ok")
			}
		},
		func(err error) { fmt.Fprintln(os.Stderr, err) })
	cli.HandleError(err, logger)
	defer r.Close()

	r.Run()
}
