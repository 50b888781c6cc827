//go:build !rp2040

// Command slotdump inspects and prepares configuration page images on the
// host: a raw dump of the reserved flash page, as read back with a debug
// probe, or a fresh image to program at manufacture.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

type imageFlags struct {
	base     uint32
	pageSize uint32
}

func newRootCmd() *cobra.Command {
	f := &imageFlags{}
	root := &cobra.Command{
		Use:          "slotdump",
		Short:        "Inspect LED driver configuration page images",
		SilenceUsage: true,
	}
	root.PersistentFlags().Uint32Var(&f.base, "base", 0x0800_7C00, "address the image is mapped at")
	root.PersistentFlags().Uint32Var(&f.pageSize, "page-size", 1024, "flash erase page size in bytes")

	root.AddCommand(newScanCmd(f), newShowCmd(f), newInitCmd(f))
	return root
}
