package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"

	"github.com/wippyai/modguard/config"
	"github.com/wippyai/modguard/guard"
)

func main() {
	var (
		configFile  = flag.String("config", "", "Path to YAML config (optional)")
		backend     = flag.String("store", "", "Store backend: memory, wazero, redis (overrides config)")
		policy      = flag.String("policy", "", "Existence policy: trust-local, consult-store (overrides config)")
		diag        = flag.Bool("diag", false, "Enable guard diagnostics")
		wasmFile    = flag.String("wasm", "", "Wasm module used as descriptor for the wazero backend")
		ops         = flag.String("ops", "", "Operations (acquire:key[=payload],release:key,+key,-key)")
		interactive = flag.Bool("i", false, "Interactive mode with TUI")
	)
	flag.Parse()

	cfg, err := loadConfig(*configFile, *backend, *policy, *diag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if *interactive {
		if !term.IsTerminal(int(os.Stdin.Fd())) {
			fmt.Fprintln(os.Stderr, "Error: interactive mode needs a terminal on stdin")
			os.Exit(1)
		}
		if err := runInteractive(cfg, *wasmFile); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if *ops == "" {
		fmt.Fprintln(os.Stderr, "Usage: guardctl [-config file] [-store backend] -ops acquire:mod,acquire:mod,release:mod")
		fmt.Fprintln(os.Stderr, "       guardctl [-config file] -i  (interactive mode)")
		os.Exit(1)
	}

	if err := run(cfg, *wasmFile, *ops, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig(path, backend, policy string, diag bool) (config.Config, error) {
	cfg := config.Default()
	if path != "" {
		var err error
		if cfg, err = config.Load(path); err != nil {
			return cfg, err
		}
	}
	if backend != "" {
		cfg.Store.Backend = config.Backend(backend)
	}
	if policy != "" {
		cfg.Guard.Policy = guard.Policy(policy)
	}
	if diag {
		cfg.Guard.DiagnosticsEnabled = true
	}
	return cfg, cfg.Validate()
}

func run(cfg config.Config, wasmFile, opsStr string, out io.Writer) (err error) {
	ctx := context.Background()

	parsed, err := parseOps(opsStr)
	if err != nil {
		return fmt.Errorf("parse ops: %w", err)
	}

	events := guard.ObserverFunc(func(e guard.Event) {
		switch e.Type {
		case guard.EventRegistered, guard.EventUnregistered, guard.EventExternalRegistration,
			guard.EventExternalRemoval, guard.EventUnmatchedRelease:
			fmt.Fprintf(out, "  event %s %s\n", e.Type, e.Key)
		}
	})

	s, err := newSession(ctx, cfg, wasmFile, events, false)
	if err != nil {
		return fmt.Errorf("open session: %w", err)
	}
	defer closeSession(ctx, s, &err)

	fmt.Fprintf(out, "Store: %s, policy: %s\n\n", cfg.Store.Backend, s.guard.Policy())

	for _, o := range parsed {
		fmt.Fprintf(out, "%s\n", o)
		if err := s.apply(ctx, o); err != nil {
			return fmt.Errorf("%s: %w", o, err)
		}
		fmt.Fprintf(out, "  dependents %d, in store %t\n", s.guard.Count(o.key), s.inStore(ctx, o.key))
	}

	entries := s.guard.Entries()
	fmt.Fprintf(out, "\nActive keys: %d\n", len(entries))
	for _, e := range entries {
		fmt.Fprintf(out, "  %s: %d\n", e.Key, e.Count)
	}
	return nil
}

// closeSession closes s and reports the close error through errp unless
// an earlier error is already set.
func closeSession(ctx context.Context, s *session, errp *error) {
	if cerr := s.Close(ctx); cerr != nil && *errp == nil {
		*errp = fmt.Errorf("close session: %w", cerr)
	}
}
