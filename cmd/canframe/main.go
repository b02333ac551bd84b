package main

import (
	"encoding/hex"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"canclock/proto"
)

const usage = `usage: canframe [-yaml] [-at 1s] time HH:MM:SS
       canframe [-yaml] [-at 1s] date YYYY-MM-DD
       canframe [-yaml] [-at 1s] alarm HH:MM
       canframe reply "01 55 00 00 00 00 00 00"`

var errUsage = errors.New(usage)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fatalf("%v", err)
	}
}

func fatalf(format string, args ...any) {
	_, _ = fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(2)
}

func run(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("canframe", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	var (
		asYAML = fs.Bool("yaml", false, "Print a script entry for the board file.")
		at     = fs.Duration("at", 0, "Script time of the frame (with -yaml).")
	)
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%v\n%s", err, usage)
	}
	if fs.NArg() != 2 {
		return errUsage
	}
	cmd, arg := strings.ToLower(fs.Arg(0)), fs.Arg(1)

	if cmd == "reply" {
		return decodeReply(arg, out)
	}

	data, err := encode(cmd, arg)
	if err != nil {
		return err
	}
	text := hexBytes(data[:])
	if *asYAML {
		_, err = fmt.Fprintf(out, "- at: %s\n  id: %#03x\n  data: %q\n", formatAt(*at), proto.RequestID, text)
		return err
	}
	_, err = fmt.Fprintln(out, text)
	return err
}

func encode(cmd, arg string) ([8]byte, error) {
	var (
		kind    proto.Kind
		payload []byte
	)
	switch cmd {
	case "time":
		t, err := time.Parse("15:04:05", arg)
		if err != nil {
			return [8]byte{}, fmt.Errorf("time: %w", err)
		}
		kind = proto.KindTime
		payload = proto.TimePayload(uint8(t.Hour()), uint8(t.Minute()), uint8(t.Second()))
	case "date":
		d, err := time.Parse("2006-01-02", arg)
		if err != nil {
			return [8]byte{}, fmt.Errorf("date: %w", err)
		}
		kind = proto.KindDate
		payload = proto.DatePayload(uint16(d.Year()), uint8(d.Month()), uint8(d.Day()))
	case "alarm":
		t, err := time.Parse("15:04", arg)
		if err != nil {
			return [8]byte{}, fmt.Errorf("alarm: %w", err)
		}
		kind = proto.KindAlarm
		payload = proto.AlarmPayload(uint8(t.Hour()), uint8(t.Minute()))
	default:
		return [8]byte{}, fmt.Errorf("unknown request %q\n%s", cmd, usage)
	}
	f, ok := proto.SingleFrame(kind, payload)
	if !ok {
		return [8]byte{}, fmt.Errorf("%s: payload does not fit a single frame", kind)
	}
	return f, nil
}

func decodeReply(arg string, out io.Writer) error {
	data, err := hex.DecodeString(strings.Join(strings.Fields(arg), ""))
	if err != nil {
		return fmt.Errorf("reply: %w", err)
	}
	code, ok := proto.DecodeReplyFrame(data)
	if !ok {
		return fmt.Errorf("reply: % x is not a reply frame", data)
	}
	switch code {
	case proto.Ack:
		_, err = fmt.Fprintln(out, "ack")
	case proto.Nak:
		_, err = fmt.Fprintln(out, "nak")
	default:
		_, err = fmt.Fprintf(out, "unknown reply %#02x\n", code)
	}
	return err
}

func hexBytes(b []byte) string {
	var sb strings.Builder
	for i, v := range b {
		if i > 0 {
			sb.WriteByte(' ')
		}
		fmt.Fprintf(&sb, "%02x", v)
	}
	return sb.String()
}

func formatAt(d time.Duration) string {
	if d == 0 {
		return "0s"
	}
	return d.String()
}
