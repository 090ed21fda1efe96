package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"

	"stockpulse/pkg/contracts"
)

type versionCmd struct {
	verbose bool
}

func (*versionCmd) Name() string     { return "version" }
func (*versionCmd) Synopsis() string { return "print the build version" }
func (*versionCmd) Usage() string {
	return `stockpulse version [-v]
`
}

func (c *versionCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.verbose, "v", false, "Also print build and runtime details")
}

func (c *versionCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	fmt.Fprintln(stdout, contracts.GetVersionString())
	if c.verbose {
		info := contracts.GetVersionInfo()
		fmt.Fprintf(stdout, "commit:  %s\nbuilt:   %s\ngo:      %s\nos/arch: %s/%s\napi:     %s\n",
			info.GitCommit, info.BuildTime, info.GoVersion, info.OS, info.Architecture, info.APIVersion)
	}
	return subcommands.ExitSuccess
}
