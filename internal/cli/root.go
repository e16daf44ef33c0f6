package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"runtime/pprof"

	"github.com/spf13/cobra"

	"github.com/MacroPower/csvdash/internal/version"
	"github.com/MacroPower/csvdash/pkg/log"
)

var (
	ErrLogHandlerFailed = errors.New("log handler failed")
	ErrInvalidArgument  = errors.New("invalid argument")
	ErrProfile          = errors.New("profile")
)

// profiles holds the profiles started by one command invocation.
type profiles struct {
	heap   *pprof.Profile
	allocs *pprof.Profile
	block  *pprof.Profile
	mutex  *pprof.Profile
	cpu    *os.File
}

func NewRootCmd(name, shortDesc, longDesc string) *cobra.Command {
	args := NewRootArgs()
	prof := &profiles{}
	closeLog := func() {}

	cmd := &cobra.Command{
		Use:           name,
		Short:         shortDesc,
		Long:          longDesc,
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       version.Version,
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(args.logLevel, "log_level", "warn", "Set the log level (debug, info, warn, error)")
	pf.StringVar(args.logFormat, "log_format", "text", "Set the log format (text, logfmt, json)")
	pf.StringVar(args.logSeqURL, "log_seq_url", "", "Also send logs to the Seq server at this URL")

	pf.StringVar(args.cpuProfile, "cpuprofile", "", "Write a CPU profile to this file")
	pf.StringVar(args.heapProfile, "heapprofile", "", "Write a heap profile to this file")
	pf.StringVar(args.memProfile, "memprofile", "", "Write a memory profile to this file")
	pf.IntVar(args.memProfileRate, "memprofile_rate", 512*1024, "Memory profiling rate as a fraction")
	pf.StringVar(args.blockProfile, "blockprofile", "", "Write a block profile to this file")
	pf.IntVar(args.blockProfileRate, "blockprofile_rate", 1, "Block profiling rate as a fraction")
	pf.StringVar(args.mutexProfile, "mutexprofile", "", "Write a mutex profile to this file")
	pf.IntVar(args.mutexProfileRate, "mutexprofile_rate", 1, "Mutex profiling rate as a fraction")

	for _, f := range []string{"cpuprofile", "heapprofile", "memprofile", "blockprofile", "mutexprofile"} {
		must(cmd.MarkPersistentFlagFilename(f))
	}

	cmd.PersistentPreRunE = func(cc *cobra.Command, _ []string) error {
		if err := prof.start(args); err != nil {
			return err
		}

		h, err := log.CreateHandlerWithStrings(
			cc.ErrOrStderr(),
			args.GetLogLevel(),
			args.GetLogFormat(),
		)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrLogHandlerFailed, err)
		}

		level, _ := log.GetLevel(args.GetLogLevel()) //nolint:errcheck // Validated above.
		h, closeLog = log.WithSeq(h, args.GetLogSeqURL(), level)

		slog.SetDefault(slog.New(h))

		slog.Debug("ready to go")

		return nil
	}

	cmd.PersistentPostRunE = func(_ *cobra.Command, _ []string) error {
		slog.Debug("shutting down")

		closeLog()

		return prof.stop(args)
	}

	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewFilesCmd())
	cmd.AddCommand(NewShowCmd())
	cmd.AddCommand(NewBrowseCmd())
	cmd.AddCommand(NewConfigCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

func (p *profiles) start(args *RootArgs) error {
	if args.GetCPUProfile() != "" {
		f, err := os.Create(args.GetCPUProfile())
		if err != nil {
			return fmt.Errorf("%w: create CPU profile: %w", ErrProfile, err)
		}

		if err := pprof.StartCPUProfile(f); err != nil {
			must(f.Close())

			return fmt.Errorf("%w: start CPU profile: %w", ErrProfile, err)
		}

		p.cpu = f
	}

	if args.GetHeapProfile() != "" || args.GetMemProfile() != "" {
		runtime.MemProfileRate = args.GetMemProfileRate()
	}

	if args.GetHeapProfile() != "" {
		p.heap = pprof.Lookup("heap")
	}

	if args.GetMemProfile() != "" {
		p.allocs = pprof.Lookup("allocs")
	}

	if args.GetBlockProfile() != "" {
		runtime.SetBlockProfileRate(args.GetBlockProfileRate())

		p.block = pprof.Lookup("block")
	}

	if args.GetMutexProfile() != "" {
		runtime.SetMutexProfileFraction(args.GetMutexProfileRate())

		p.mutex = pprof.Lookup("mutex")
	}

	return nil
}

func (p *profiles) stop(args *RootArgs) error {
	if p.cpu != nil {
		pprof.StopCPUProfile()

		if err := p.cpu.Close(); err != nil {
			return fmt.Errorf("%w: close CPU profile: %w", ErrProfile, err)
		}
	}

	if p.allocs != nil {
		runtime.GC() //nolint:revive // Get up-to-date statistics for the profile.
	}

	for _, wp := range []struct {
		profile *pprof.Profile
		path    string
	}{
		{p.heap, args.GetHeapProfile()},
		{p.allocs, args.GetMemProfile()},
		{p.block, args.GetBlockProfile()},
		{p.mutex, args.GetMutexProfile()},
	} {
		if wp.profile == nil {
			continue
		}

		if err := writeProfile(wp.profile, wp.path); err != nil {
			return err
		}
	}

	return nil
}

func writeProfile(p *pprof.Profile, path string) error {
	f, err := os.Create(path) //nolint:gosec // User-provided output path.
	if err != nil {
		return fmt.Errorf("%w: create %s profile: %w", ErrProfile, p.Name(), err)
	}

	if err := p.WriteTo(f, 0); err != nil {
		must(f.Close())

		return fmt.Errorf("%w: write %s profile: %w", ErrProfile, p.Name(), err)
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("%w: close %s profile: %w", ErrProfile, p.Name(), err)
	}

	return nil
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}
