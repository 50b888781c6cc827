//go:build !rp2040

package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"ledconfig-go/drivers/flash"
	"ledconfig-go/errcode"
	"ledconfig-go/services/config"
	"ledconfig-go/types"
)

// open maps the first page of the image file. Store diagnostics go to diag.
func (f *imageFlags) open(path string, diag io.Writer) (*config.Store, error) {
	img, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if uint32(len(img)) < f.pageSize {
		return nil, fmt.Errorf("%s: image is %d bytes, page is %d", path, len(img), f.pageSize)
	}
	sim := flash.NewSimFromImage(f.base, f.pageSize, img[:f.pageSize])
	return config.New(sim, config.NewCache(), config.Options{PageAddr: f.base, Diag: diag})
}

func newScanCmd(f *imageFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "scan IMAGE",
		Short: "List slot states and the configuration a board would load",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := f.open(args[0], cmd.OutOrStdout())
			if err != nil {
				return err
			}
			return runScan(cmd.OutOrStdout(), st)
		},
	}
}

func runScan(out io.Writer, st *config.Store) error {
	l := st.Log()
	fmt.Fprintf(out, "page 0x%08x size %d capacity %d\n", l.Base(), l.PageSize(), l.Capacity())

	slots, err := l.Scan(nil)
	if err != nil {
		return err
	}
	for _, sl := range slots {
		body := "entry"
		if sl.Blank {
			body = "blank"
		} else if sl.Status == config.StatusEmpty {
			body = "dirty"
		}
		fmt.Fprintf(out, "slot %d  %-7s %s\n", sl.Index, sl.Status, body)
	}

	switch err := st.Load(); {
	case errors.Is(err, errcode.NoConfiguration):
		fmt.Fprintln(out, "active none")
	case err != nil:
		return err
	default:
		e := st.Cache().Entry()
		fmt.Fprintf(out, "active address 0x%04x (%s)\n", e.Address, st.Cache().Source())
	}
	return nil
}

func newShowCmd(f *imageFlags) *cobra.Command {
	var slot int
	cmd := &cobra.Command{
		Use:   "show IMAGE",
		Short: "Decode one slot and run the validator on it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := f.open(args[0], cmd.OutOrStdout())
			if err != nil {
				return err
			}
			var e types.ConfigEntry
			if err := st.Log().ReadEntry(slot, &e); err != nil {
				return err
			}
			printEntry(cmd.OutOrStdout(), &e)
			if !config.Validate(&e, cmd.OutOrStdout()) {
				return errcode.InvalidConfiguration
			}
			fmt.Fprintf(cmd.OutOrStdout(), "valid, backup channel %s\n", channelName(e.BackupChannel))
			return nil
		},
	}
	cmd.Flags().IntVar(&slot, "slot", 0, "slot index")
	return cmd
}

func printEntry(out io.Writer, e *types.ConfigEntry) {
	fmt.Fprintf(out, "address     0x%04x\n", e.Address)
	fmt.Fprintf(out, "heat_limit  %v\n", e.HeatLimit)
	for i := range e.LEDInfos {
		li := &e.LEDInfos[i]
		fmt.Fprintf(out, "led %d  channels %v  peak_Y", i, li.Channels)
		for _, y := range li.PeakY {
			fmt.Fprintf(out, " %.3f", y.Float())
		}
		fmt.Fprintln(out)
		for r := 0; r < 3; r++ {
			m := li.ColorMatrix[r*3 : r*3+3]
			fmt.Fprintf(out, "       [% .4f % .4f % .4f]\n", m[0].Float(), m[1].Float(), m[2].Float())
		}
	}
	fmt.Fprintf(out, "backup      %s (stored)\n", channelName(e.BackupChannel))
}

func channelName(ch uint8) string {
	if ch == types.NoBackupChannel {
		return "none"
	}
	return strconv.Itoa(int(ch))
}

func newInitCmd(f *imageFlags) *cobra.Command {
	var address uint16
	cmd := &cobra.Command{
		Use:   "init IMAGE",
		Short: "Write an image holding the default configuration",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sim := flash.NewSim(f.base, f.pageSize, 1)
			st, err := config.New(sim, config.NewCache(), config.Options{PageAddr: f.base, Diag: cmd.ErrOrStderr()})
			if err != nil {
				return err
			}
			e := config.DefaultEntry()
			e.Address = address
			// Save treats an invalid entry as fatal; reject it here instead.
			if !config.Validate(&e, cmd.ErrOrStderr()) {
				return errcode.InvalidConfiguration
			}
			if err := st.Save(&e); err != nil {
				return err
			}
			return os.WriteFile(args[0], sim.Bytes(), 0o644)
		},
	}
	cmd.Flags().Uint16Var(&address, "address", types.AddressBroadcast, "board address")
	return cmd
}
