package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/database64128/fdio-go"
	"github.com/spf13/cobra"
)

func (a *app) newGranularityCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "granularity",
		Short: "Print the memory mapping allocation granularity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), a.fs.AllocationGranularity())
			return nil
		},
	}
}

func (a *app) newStatCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stat PATH",
		Short: "Print the length of a file and the bytes available to read",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			fd, err := a.openFile(path, fdio.ModeRead)
			if err != nil {
				return err
			}
			defer a.closeFile(path, fd)

			size, err := a.fs.Length(fd)
			if err != nil {
				return err
			}
			avail, err := a.fs.Available(fd)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "length: %d\navailable: %d\n", size, avail)
			return nil
		},
	}
}

func (a *app) newLockCommand() *cobra.Command {
	var (
		shared bool
		wait   bool
		start  int64
		length int64
		hold   time.Duration
	)

	cmd := &cobra.Command{
		Use:   "lock PATH",
		Short: "Try to lock a byte range of a file",
		Long: `Try to lock a byte range of a file and report whether the lock was acquired.

The lock is held for --hold, or until the command is interrupted, then released.
A --length of 0 locks from --start to the end of the file and beyond.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			mode := fdio.ModeReadWrite
			if shared {
				mode = fdio.ModeRead
			}
			fd, err := a.openFile(path, mode)
			if err != nil {
				return err
			}
			defer a.closeFile(path, fd)

			ok, err := a.fs.Lock(fd, start, length, shared, wait)
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintln(cmd.OutOrStdout(), "unavailable")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), "acquired")
			a.logger.Info("Locked range", "path", path, "start", start, "length", length, "shared", shared, "hold", hold)

			if hold > 0 {
				t := time.NewTimer(hold)
				select {
				case <-t.C:
				case <-cmd.Context().Done():
					t.Stop()
				}
			}

			if err = a.fs.Unlock(fd, start, length); err != nil {
				return err
			}
			a.logger.Info("Unlocked range", "path", path, "start", start, "length", length)
			return nil
		},
	}

	cmd.Flags().BoolVar(&shared, "shared", false, "request a shared (read) lock instead of an exclusive one")
	cmd.Flags().BoolVar(&wait, "wait", false, "block until the lock is available")
	cmd.Flags().Int64Var(&start, "start", 0, "first byte of the range")
	cmd.Flags().Int64Var(&length, "length", 0, "number of bytes in the range, 0 for the rest of the file")
	cmd.Flags().DurationVar(&hold, "hold", 0, "how long to hold the lock before releasing it")
	return cmd
}

func (a *app) newTruncateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "truncate PATH SIZE",
		Short: "Set the length of a file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			size, err := strconv.ParseInt(args[1], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid size %q: %w", args[1], err)
			}

			fd, err := a.openFile(path, fdio.ModeWrite)
			if err != nil {
				return err
			}
			defer a.closeFile(path, fd)

			if err = a.fs.Truncate(fd, size); err != nil {
				return err
			}
			a.logger.Info("Truncated file", "path", path, "size", size)
			return nil
		},
	}
}

func (a *app) newCopyCommand() *cobra.Command {
	var offset, count int64

	cmd := &cobra.Command{
		Use:   "copy SRC DST",
		Short: "Copy a range of a file to another file without user-space buffering",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			srcPath, dstPath := args[0], args[1]

			// Opening DST truncates it, which would destroy SRC if they are the same file.
			if same, err := sameFile(srcPath, dstPath); err != nil {
				return err
			} else if same {
				return fmt.Errorf("%s and %s are the same file", srcPath, dstPath)
			}

			src, err := a.openFile(srcPath, fdio.ModeRead)
			if err != nil {
				return err
			}
			defer a.closeFile(srcPath, src)

			want := count
			if want == 0 {
				size, err := a.fs.Length(src)
				if err != nil {
					return err
				}
				want = max(size-offset, 0)
			}

			dst, err := a.openFile(dstPath, fdio.ModeWrite|fdio.ModeCreate|fdio.ModeTruncate)
			if err != nil {
				return err
			}
			defer a.closeFile(dstPath, dst)

			var total int64
			for total < want {
				n, err := a.fs.Transfer(src, dst, offset+total, want-total)
				if err != nil {
					return err
				}
				if n == 0 {
					break
				}
				total += n
			}
			a.logger.Info("Copied file range", "src", srcPath, "dst", dstPath, "offset", offset, "bytes", total)
			fmt.Fprintf(cmd.OutOrStdout(), "copied %d bytes\n", total)
			return nil
		},
	}

	cmd.Flags().Int64Var(&offset, "offset", 0, "first byte of SRC to copy")
	cmd.Flags().Int64Var(&count, "count", 0, "number of bytes to copy, 0 for the rest of SRC")
	return cmd
}

// sameFile reports whether both paths name the same existing file.
// A missing dst is never the same file.
func sameFile(src, dst string) (bool, error) {
	dstInfo, err := os.Stat(dst)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	srcInfo, err := os.Stat(src)
	if err != nil {
		// Opening SRC reports this.
		return false, nil
	}
	return os.SameFile(srcInfo, dstInfo), nil
}

func (a *app) newCatCommand() *cobra.Command {
	var segments, segmentSize int

	cmd := &cobra.Command{
		Use:   "cat PATH",
		Short: "Print a file using scatter reads",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if segments <= 0 || segmentSize <= 0 {
				return errors.New("--segments and --segment-size must be positive")
			}

			path := args[0]
			fd, err := a.openFile(path, fdio.ModeRead)
			if err != nil {
				return err
			}
			defer a.closeFile(path, fd)

			buf := make([]byte, segments*segmentSize)
			bufs := make([][]byte, segments)
			for i := range bufs {
				bufs[i] = buf[i*segmentSize : (i+1)*segmentSize]
			}

			out := cmd.OutOrStdout()
			for {
				n, err := a.fs.ReadvBuffers(fd, bufs)
				if err == io.EOF {
					return nil
				}
				if err != nil {
					return err
				}
				a.logger.Debug("Scatter read", "path", path, "bytes", n)
				if _, err = out.Write(buf[:n]); err != nil {
					return err
				}
			}
		},
	}

	cmd.Flags().IntVar(&segments, "segments", 4, "number of buffers per read")
	cmd.Flags().IntVar(&segmentSize, "segment-size", 4096, "size of each buffer")
	return cmd
}
