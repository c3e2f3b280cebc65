package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"syscall"

	"github.com/mattn/go-isatty"

	"wt-ssh-manager/pkg/manager"
)

var (
	flagStore       string
	flagConfig      string
	flagTheme       string
	flagExecReplace bool
	flagRecord      bool
	flagDryRun      bool
)

func init() {
	flag.StringVar(&flagStore, "store", "", "Path to the profile store (default ~/.wt_ssh_manager/hosts.db)")
	flag.StringVar(&flagConfig, "config", "", "Path to YAML settings (default ~/.wt_ssh_manager/config.yaml)")
	flag.StringVar(&flagTheme, "theme", "", "TUI theme: dark|light|none")
	flag.BoolVar(&flagExecReplace, "exec-replace", false, "On connect, leave the selector and replace this process with ssh")
	flag.BoolVar(&flagRecord, "record", false, "Record sessions to ~/.wt_ssh_manager/logs/<name>/YYYY-MM-DD.log")
	flag.BoolVar(&flagDryRun, "dry-run", false, "With connect: print the ssh command and exit")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "wt-ssh-manager\n\n")
		fmt.Fprintf(os.Stderr, "Usage:\n")
		fmt.Fprintf(os.Stderr, "  wt-ssh-manager [options]                      interactive selector\n")
		fmt.Fprintf(os.Stderr, "  wt-ssh-manager [options] list\n")
		fmt.Fprintf(os.Stderr, "  wt-ssh-manager [options] add <name> <host> [--user U] [--port N] [--key-file F] [--note T]\n")
		fmt.Fprintf(os.Stderr, "  wt-ssh-manager [options] remove <name>\n")
		fmt.Fprintf(os.Stderr, "  wt-ssh-manager [options] connect <name>\n")
		fmt.Fprintf(os.Stderr, "  wt-ssh-manager [options] export [file]\n")
		fmt.Fprintf(os.Stderr, "  wt-ssh-manager [options] import [--replace] <file>\n")
		fmt.Fprintf(os.Stderr, "  wt-ssh-manager [options] logs <name> [-n N]\n")
		fmt.Fprintf(os.Stderr, "  wt-ssh-manager [options] path\n")
		fmt.Fprintf(os.Stderr, "  wt-ssh-manager [options] config\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  wt-ssh-manager
  wt-ssh-manager add box1 10.0.0.5 --user root --port 2222
  wt-ssh-manager --dry-run connect box1
  wt-ssh-manager export > profiles.yaml
`)
	}
}

// app bundles what every subcommand needs.
type app struct {
	settings manager.Settings
	store    *manager.Store
	activity *manager.ActivityLog
}

func main() {
	flag.Parse()

	a, err := newApp()
	if err != nil {
		fmt.Fprintf(os.Stderr, "wt-ssh-manager: %v\n", err)
		os.Exit(1)
	}

	if flag.NArg() >= 1 {
		args := flag.Args()[1:]
		var runErr error
		switch flag.Arg(0) {
		case "list":
			runErr = a.runList()
		case "add":
			runErr = a.runAdd(args)
		case "remove", "rm":
			runErr = a.runRemove(args)
		case "connect":
			runErr = a.runConnect(args)
		case "export":
			runErr = a.runExport(args)
		case "import":
			runErr = a.runImport(args)
		case "logs":
			runErr = a.runLogs(args)
		case "path":
			fmt.Println(a.store.Path())
		case "config":
			runErr = a.runConfig()
		default:
			flag.Usage()
			os.Exit(2)
		}
		if runErr != nil {
			fmt.Fprintf(os.Stderr, "wt-ssh-manager: %v\n", runErr)
			os.Exit(exitCodeFromErr(runErr))
		}
		return
	}

	if !isatty.IsTerminal(os.Stdin.Fd()) || !isatty.IsTerminal(os.Stdout.Fd()) {
		fmt.Fprintf(os.Stderr, "wt-ssh-manager: the interactive selector needs a terminal; use a subcommand (see -h)\n")
		os.Exit(2)
	}

	opts := manager.UIOptions{
		SSHCommand:  a.settings.EffectiveSSHCommand(),
		ExecReplace: flagExecReplace || a.settings.ExitAfterConnect,
		Record:      flagRecord || a.settings.RecordSessions,
		Theme:       manager.ThemeByName(firstNonEmpty(flagTheme, a.settings.Theme)),
	}
	handoff, err := manager.RunTUI(a.store, a.activity, opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "wt-ssh-manager: %v\n", err)
		os.Exit(1)
	}
	if handoff != nil {
		fmt.Print(manager.ConnectBanner(*handoff, opts.SSHCommand))
		a.activity.ConnectStart(*handoff, manager.CommandLine(*handoff, opts.SSHCommand))
		if err := manager.ExecReplace(*handoff, opts.SSHCommand); err != nil {
			a.activity.Connect(*handoff, manager.CommandLine(*handoff, opts.SSHCommand), err)
			fmt.Fprintf(os.Stderr, "wt-ssh-manager: %v\n", err)
			os.Exit(1)
		}
	}
}

func newApp() (*app, error) {
	settings, _, err := manager.LoadSettings(flagConfig)
	if err != nil {
		return nil, err
	}
	return &app{
		settings: settings,
		store:    manager.NewStore(firstNonEmpty(flagStore, settings.StorePath)),
		activity: manager.NewActivityLog(""),
	}, nil
}

func (a *app) load() []manager.Profile {
	profiles, rep := a.store.LoadWithReport()
	a.activity.Loaded(a.store.Path(), rep)
	if rep.Skipped > 0 {
		fmt.Fprintf(os.Stderr, "wt-ssh-manager: skipped %d malformed line(s) in %s\n", rep.Skipped, a.store.Path())
	}
	return profiles
}

func (a *app) runList() error {
	profiles := a.load()
	if len(profiles) == 0 {
		fmt.Println("(no saved servers)")
		return nil
	}
	for i, p := range profiles {
		fmt.Printf("%3d. %s\n", i+1, p.Summary())
	}
	return nil
}

func (a *app) runAdd(args []string) error {
	fs := flag.NewFlagSet("add", flag.ContinueOnError)
	var d manager.Draft
	fs.StringVar(&d.User, "user", "", "User name (optional)")
	fs.StringVar(&d.Port, "port", "22", "Port")
	fs.StringVar(&d.KeyFile, "key-file", "", "Private key path (optional)")
	fs.StringVar(&d.Note, "note", "", "Note (optional)")
	fs.SetOutput(os.Stderr)
	pos, err := parseInterspersed(fs, args)
	if err != nil {
		return err
	}
	if len(pos) != 2 {
		return errors.New("usage: wt-ssh-manager add <name> <host> [--user U] [--port N] [--key-file F] [--note T]")
	}
	if _, ok := manager.ParsePort(d.Port); !ok {
		return fmt.Errorf("invalid port %q", d.Port)
	}
	d.Name, d.Host = pos[0], pos[1]

	st := manager.NewState(a.load())
	next := manager.Add(st, d, a.store)
	if len(next.Profiles) == len(st.Profiles) {
		return errors.New(next.Status)
	}
	if next.SaveErr != nil {
		a.activity.SaveFailed(next.SaveErr)
	} else if p, ok := next.Current(); ok {
		a.activity.Added(p)
	}
	fmt.Println(next.Status)
	if next.SaveErr != nil {
		return fmt.Errorf("store not written: %w", next.SaveErr)
	}
	return nil
}

func (a *app) runRemove(args []string) error {
	if len(args) != 1 {
		return errors.New("usage: wt-ssh-manager remove <name>")
	}
	st := manager.NewState(a.load())
	idx := manager.IndexOf(st.Profiles, args[0])
	if idx < 0 {
		return fmt.Errorf("server not found: %s", args[0])
	}
	victim := st.Profiles[idx]
	st.Selected = idx
	next := manager.Delete(st, true, a.store)
	if next.SaveErr != nil {
		a.activity.SaveFailed(next.SaveErr)
	} else {
		a.activity.Deleted(victim)
	}
	fmt.Println(next.Status)
	if next.SaveErr != nil {
		return fmt.Errorf("store not written: %w", next.SaveErr)
	}
	return nil
}

func (a *app) runConnect(args []string) error {
	if len(args) != 1 {
		return errors.New("usage: wt-ssh-manager connect <name>")
	}
	profiles := a.load()
	idx := manager.IndexOf(profiles, args[0])
	if idx < 0 {
		return fmt.Errorf("server not found: %s", args[0])
	}
	p := profiles[idx]
	sshCmd := a.settings.EffectiveSSHCommand()

	if flagDryRun {
		fmt.Println(manager.CommandLine(p, sshCmd))
		return nil
	}
	if flagExecReplace {
		fmt.Print(manager.ConnectBanner(p, sshCmd))
		a.activity.ConnectStart(p, manager.CommandLine(p, sshCmd))
		return manager.ExecReplace(p, sshCmd)
	}

	var l manager.Launcher = manager.NewExecLauncher(sshCmd, flagRecord || a.settings.RecordSessions, a.activity)
	return l.Launch(context.Background(), p)
}

func (a *app) runExport(args []string) error {
	data, err := manager.ExportYAML(a.load())
	if err != nil {
		return err
	}
	if len(args) == 0 || args[0] == "-" {
		_, err = os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(args[0], data, 0o600); err != nil {
		return fmt.Errorf("write %s: %w", args[0], err)
	}
	return nil
}

func (a *app) runImport(args []string) error {
	fs := flag.NewFlagSet("import", flag.ContinueOnError)
	replace := fs.Bool("replace", false, "Replace all profiles instead of merging by name")
	fs.SetOutput(os.Stderr)
	pos, err := parseInterspersed(fs, args)
	if err != nil {
		return err
	}
	if len(pos) != 1 {
		return errors.New("usage: wt-ssh-manager import [--replace] <file>")
	}
	added, updated, err := manager.ImportFile(a.store, pos[0], *replace)
	if err != nil {
		if errors.Is(err, manager.ErrStoreWrite) {
			a.activity.SaveFailed(err)
		} else {
			a.activity.ImportFailed(pos[0], err)
		}
		return err
	}
	a.activity.Imported(pos[0], added, updated, *replace)
	fmt.Printf("Imported: %d added, %d updated\n", added, updated)
	return nil
}

func (a *app) runLogs(args []string) error {
	fs := flag.NewFlagSet("logs", flag.ContinueOnError)
	n := fs.Int("n", 40, "Number of trailing lines to print")
	fs.SetOutput(os.Stderr)
	pos, err := parseInterspersed(fs, args)
	if err != nil {
		return err
	}
	if len(pos) != 1 {
		return errors.New("usage: wt-ssh-manager logs <name> [-n N]")
	}
	files, err := manager.ListProfileLogFiles(pos[0], manager.DefaultLogOptions())
	if err != nil {
		return err
	}
	if len(files) == 0 {
		fmt.Println("(no recorded sessions)")
		return nil
	}
	lines, err := manager.ReadLastNLines(files[0], *n)
	if err != nil {
		return err
	}
	fmt.Printf("== %s ==\n", files[0])
	for _, ln := range lines {
		fmt.Println(ln)
	}
	return nil
}

func (a *app) runConfig() error {
	eff := a.settings
	eff.SSHCommand = eff.EffectiveSSHCommand()
	eff.StorePath = a.store.Path()
	data, err := eff.Marshal()
	if err != nil {
		return err
	}
	_, err = os.Stdout.Write(data)
	return err
}

// parseInterspersed parses fs while allowing flags after positional arguments.
func parseInterspersed(fs *flag.FlagSet, args []string) ([]string, error) {
	var pos []string
	for {
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
		rest := fs.Args()
		if len(rest) == 0 {
			return pos, nil
		}
		pos = append(pos, rest[0])
		args = rest[1:]
	}
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func exitCodeFromErr(err error) int {
	var ee *exec.ExitError
	if errors.As(err, &ee) {
		if status, ok := ee.Sys().(syscall.WaitStatus); ok {
			return status.ExitStatus()
		}
	}
	return 1
}
