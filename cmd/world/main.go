// world is the reference host process for the simulation core: a thin
// command loop standing in for the Presenter (spec §5: "the Presenter
// drives the loop by returning one command per wait_for_input() call").
// It reads one command per line from stdin and prints one result line per
// command, so it can be driven either interactively or by a test harness
// feeding a scripted command file.
//
// Commands: open <path> | new <seed> <path> | move <n|ne|e|se|s|sw|w|nw> |
// advance [n] | fire <dx> <dy> | throw <itemID> <dx> <dy> |
// open-door <n|ne|e|se|s|sw|w|nw> | close-door <n|ne|e|se|s|sw|w|nw> |
// hash | save | close | quit
package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/ashgo/ashfall/internal/applog"
	"github.com/ashgo/ashfall/internal/catalog"
	"github.com/ashgo/ashfall/internal/config"
	"github.com/ashgo/ashfall/internal/engine"
	"github.com/ashgo/ashfall/internal/geom"
)

// Exit codes per spec §6 External interfaces.
const (
	exitOK            = 0
	exitInvalidWorld  = 1
	exitCorruptSubmap = 2
	exitIoError       = 3
)

func main() {
	os.Exit(run(os.Stdin, os.Stdout, os.Stderr))
}

func run(in *os.File, out, errOut *os.File) int {
	log, err := applog.New(config.LoggingConfig{Level: "info", Format: "console"})
	if err != nil {
		fmt.Fprintf(errOut, "fatal: logger: %v\n", err)
		return exitIoError
	}
	defer log.Sync()

	var w *engine.World
	defer func() {
		if w != nil {
			w.Close()
		}
	}()

	sc := bufio.NewScanner(in)
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		cmd, args := fields[0], fields[1:]

		switch cmd {
		case "new":
			if len(args) != 2 {
				fmt.Fprintln(errOut, "usage: new <seed> <path>")
				return exitInvalidWorld
			}
			seed, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				fmt.Fprintf(errOut, "bad seed %q: %v\n", args[0], err)
				return exitInvalidWorld
			}
			nw, err := engine.New(seed, args[1], log)
			if code, ok := exitCodeFor(err); ok {
				fmt.Fprintf(errOut, "new: %v\n", err)
				return code
			}
			w = nw
			w.SpawnPlayer(geom.Point{})
			fmt.Fprintln(out, "ok")

		case "open":
			if len(args) != 1 {
				fmt.Fprintln(errOut, "usage: open <path>")
				return exitInvalidWorld
			}
			ow, err := engine.Open(args[0], log)
			if code, ok := exitCodeFor(err); ok {
				fmt.Fprintf(errOut, "open: %v\n", err)
				return code
			}
			w = ow
			fmt.Fprintln(out, "ok")

		case "move":
			if w == nil || len(args) != 1 {
				fmt.Fprintln(errOut, "usage: move <n|ne|e|se|s|sw|w|nw> (world must be open)")
				continue
			}
			dir, ok := parseDir(args[0])
			if !ok {
				fmt.Fprintf(errOut, "unknown direction %q\n", args[0])
				continue
			}
			if err := w.StepPlayer(dir); err != nil {
				fmt.Fprintf(out, "rejected: %v\n", err)
				continue
			}
			fmt.Fprintln(out, "ok")

		case "fire":
			if w == nil || len(args) != 2 {
				fmt.Fprintln(errOut, "usage: fire <dx> <dy> (world must be open)")
				continue
			}
			dx, errX := strconv.Atoi(args[0])
			dy, errY := strconv.Atoi(args[1])
			if errX != nil || errY != nil {
				fmt.Fprintf(errOut, "bad offset %q %q\n", args[0], args[1])
				continue
			}
			origin := w.PlayerPos()
			target := geom.Point{X: origin.X + int32(dx), Y: origin.Y + int32(dy), Z: origin.Z}
			res, err := w.Fire(target)
			if err != nil {
				fmt.Fprintf(out, "rejected: %v\n", err)
				continue
			}
			if res.Aborted {
				fmt.Fprintf(out, "aborted: %s\n", res.AbortedWhy)
				continue
			}
			fmt.Fprintf(out, "ok shots=%d recoil=%d tier=%d\n", res.ShotsFired, res.RecoilTotal, res.FinalTier)

		case "throw":
			if w == nil || len(args) != 3 {
				fmt.Fprintln(errOut, "usage: throw <itemID> <dx> <dy> (world must be open)")
				continue
			}
			itemID, errI := strconv.Atoi(args[0])
			dx, errX := strconv.Atoi(args[1])
			dy, errY := strconv.Atoi(args[2])
			if errI != nil || errX != nil || errY != nil {
				fmt.Fprintf(errOut, "bad args %q %q %q\n", args[0], args[1], args[2])
				continue
			}
			origin := w.PlayerPos()
			target := geom.Point{X: origin.X + int32(dx), Y: origin.Y + int32(dy), Z: origin.Z}
			res, err := w.Throw(catalog.ItemID(itemID), target)
			if err != nil {
				fmt.Fprintf(out, "rejected: %v\n", err)
				continue
			}
			fmt.Fprintf(out, "ok landed=%d,%d shattered=%t\n", res.LandedAt.X, res.LandedAt.Y, res.Shattered)

		case "open-door":
			if w == nil || len(args) != 1 {
				fmt.Fprintln(errOut, "usage: open-door <n|ne|e|se|s|sw|w|nw> (world must be open)")
				continue
			}
			dir, ok := parseDir(args[0])
			if !ok {
				fmt.Fprintf(errOut, "unknown direction %q\n", args[0])
				continue
			}
			if err := w.OpenDoor(dir); err != nil {
				fmt.Fprintf(out, "rejected: %v\n", err)
				continue
			}
			fmt.Fprintln(out, "ok")

		case "close-door":
			if w == nil || len(args) != 1 {
				fmt.Fprintln(errOut, "usage: close-door <n|ne|e|se|s|sw|w|nw> (world must be open)")
				continue
			}
			dir, ok := parseDir(args[0])
			if !ok {
				fmt.Fprintf(errOut, "unknown direction %q\n", args[0])
				continue
			}
			if err := w.CloseDoor(dir); err != nil {
				fmt.Fprintf(out, "rejected: %v\n", err)
				continue
			}
			fmt.Fprintln(out, "ok")

		case "advance":
			if w == nil {
				fmt.Fprintln(errOut, "no world open")
				continue
			}
			n := 1
			if len(args) == 1 {
				if v, err := strconv.Atoi(args[0]); err == nil {
					n = v
				}
			}
			for i := 0; i < n; i++ {
				_ = w.Advance()
			}
			fmt.Fprintf(out, "ok turn=%d\n", w.Turn())

		case "save":
			if w == nil {
				fmt.Fprintln(errOut, "no world open")
				continue
			}
			if err := w.Save(); err != nil {
				fmt.Fprintf(errOut, "save: %v\n", err)
				return exitIoError
			}
			fmt.Fprintln(out, "ok")

		case "close":
			if w == nil {
				fmt.Fprintln(errOut, "no world open")
				continue
			}
			err := w.Close()
			w = nil
			if err != nil {
				fmt.Fprintf(errOut, "close: %v\n", err)
				return exitIoError
			}
			fmt.Fprintln(out, "ok")

		case "hash":
			if w == nil {
				fmt.Fprintln(errOut, "no world open")
				continue
			}
			digest, err := w.Hash()
			if err != nil {
				fmt.Fprintf(errOut, "hash: %v\n", err)
				continue
			}
			fmt.Fprintf(out, "%x\n", digest)

		case "quit":
			return exitOK

		default:
			fmt.Fprintf(errOut, "unknown command %q\n", cmd)
		}
	}
	return exitOK
}

// exitCodeFor maps a world-open/world-new error to the process exit code
// named in spec §6, if err is one of the fatal sentinel kinds.
func exitCodeFor(err error) (int, bool) {
	switch {
	case err == nil:
		return 0, false
	case errors.Is(err, engine.ErrInvalidWorldDir):
		return exitInvalidWorld, true
	case errors.Is(err, engine.ErrParseError):
		return exitCorruptSubmap, true
	case errors.Is(err, engine.ErrIoError):
		return exitIoError, true
	default:
		return exitInvalidWorld, true
	}
}

func parseDir(s string) (geom.Dir, bool) {
	switch strings.ToLower(s) {
	case "n":
		return geom.DirN, true
	case "ne":
		return geom.DirNE, true
	case "e":
		return geom.DirE, true
	case "se":
		return geom.DirSE, true
	case "s":
		return geom.DirS, true
	case "sw":
		return geom.DirSW, true
	case "w":
		return geom.DirW, true
	case "nw":
		return geom.DirNW, true
	default:
		return geom.DirNone, false
	}
}
