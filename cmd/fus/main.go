package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"gopkg.in/yaml.v3"

	"github.com/fus-server/fus/internal/logger"
	"github.com/fus-server/fus/pkg/access"
	"github.com/fus-server/fus/pkg/config"
)

// dumpReport is the YAML shape of the effective permission table.
type dumpReport struct {
	Users  []string            `yaml:"users"`
	Groups map[string][]string `yaml:"groups"`
	Dirs   []dumpDir           `yaml:"dirs"`
}

type dumpDir struct {
	Path       string              `yaml:"path"`
	Operations map[string][]string `yaml:"operations"`
}

func main() {
	configPath := flag.String("config", "/etc/fus.conf", "configuration file location")
	userName := flag.String("user", "", "user name for an authorization query (empty = anonymous)")
	secret := flag.String("secret", "", "secret presented for the query user")
	path := flag.String("path", "", "directory path for the query")
	op := flag.String("op", "", "operation for the query (list, read, write, delete, mkdir)")
	dump := flag.Bool("dump", false, "print the effective permission table as YAML and exit")
	watch := flag.Bool("watch", false, "stay resident and reload the snapshot on config changes")
	flag.Parse()

	cfg, snapshot, err := config.LoadSnapshot(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "fus: %v\n", err)
		os.Exit(2)
	}

	if err := logger.Configure(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output); err != nil {
		fmt.Fprintf(os.Stderr, "fus: %v\n", err)
		os.Exit(2)
	}

	engine := access.NewEngine(snapshot)

	switch {
	case *dump:
		if err := runDump(os.Stdout, snapshot); err != nil {
			fmt.Fprintf(os.Stderr, "fus: %v\n", err)
			os.Exit(2)
		}

	case *watch:
		runWatch(*configPath, engine)

	default:
		os.Exit(runQuery(engine, *userName, *secret, *path, *op))
	}
}

// runQuery performs a one-shot authorization check and prints the decision.
// Exit codes: 0 allow, 1 deny, 2 usage error.
func runQuery(engine *access.Engine, name, secret, path, opName string) int {
	if opName == "" {
		fmt.Fprintln(os.Stderr, "fus: -op is required for a query (or use -dump / -watch)")
		flag.Usage()
		return 2
	}
	op, err := access.ParseOperation(opName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "fus: %v\n", err)
		return 2
	}

	decision := engine.Authorize(name, []byte(secret), path, op)
	if decision.Allowed {
		fmt.Printf("ALLOW %s %q (%s at %q)\n", op, path, decision.Reason, decision.Path)
		return 0
	}
	fmt.Printf("DENY %s %q (%s)\n", op, path, decision.Reason)
	return 1
}

// runDump prints the effective permission table: for every configured
// directory and operation, the users the current snapshot would allow.
func runDump(out *os.File, snapshot *access.Snapshot) error {
	report := dumpReport{
		Users:  snapshot.Users().Names(),
		Groups: make(map[string][]string),
	}
	for _, group := range snapshot.Groups().Names() {
		report.Groups[group] = snapshot.Groups().Members(group)
	}

	for _, dirPath := range snapshot.Rules().Paths() {
		dir := dumpDir{Path: dirPath, Operations: make(map[string][]string)}
		for _, op := range access.Operations() {
			var allowed []string
			for _, name := range report.Users {
				id := &access.Identity{Name: name, Anonymous: name == access.AnonymousName}
				if snapshot.Check(id, dirPath, op).Allowed {
					allowed = append(allowed, name)
				}
			}
			sort.Strings(allowed)
			dir.Operations[op.String()] = allowed
		}
		report.Dirs = append(report.Dirs, dir)
	}

	encoder := yaml.NewEncoder(out)
	defer encoder.Close()
	return encoder.Encode(report)
}

// runWatch keeps the process resident, swapping in a fresh snapshot on
// every configuration change until interrupted.
func runWatch(configPath string, engine *access.Engine) {
	if err := config.Watch(configPath, engine); err != nil {
		fmt.Fprintf(os.Stderr, "fus: %v\n", err)
		os.Exit(2)
	}
	logger.Info("watching %s for changes, press Ctrl+C to stop", configPath)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan
	logger.Info("shutting down")
}
