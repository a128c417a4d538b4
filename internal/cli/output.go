// Copyright (c) 2025 Jeremy Hahn
// Copyright (c) 2025 Automate The Things, LLC
//
// This file is part of go-vss.
//
// go-vss is dual-licensed:
//
// 1. GNU Affero General Public License v3.0 (AGPL-3.0)
//    See LICENSE file or visit https://www.gnu.org/licenses/agpl-3.0.html
//
// 2. Commercial License
//    Contact licensing@automatethethings.com for commercial licensing options.


package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/jeremyhahn/go-vss/internal/config"
	"github.com/jeremyhahn/go-vss/internal/receiver"
	"github.com/jeremyhahn/go-vss/internal/sender"
	"github.com/jeremyhahn/go-vss/internal/session"
)

// OutputFormat defines the output format type
type OutputFormat string

const (
	OutputFormatText OutputFormat = "text"
	OutputFormatJSON OutputFormat = "json"
)

// Printer handles formatted output
type Printer struct {
	format OutputFormat
	writer io.Writer
}

// NewPrinter creates a new Printer
func NewPrinter(format string, writer io.Writer) *Printer {
	return &Printer{
		format: OutputFormat(format),
		writer: writer,
	}
}

type sessionView struct {
	ID            string   `json:"session_id"`
	N             int      `json:"n"`
	K             int      `json:"k"`
	T             int      `json:"t"`
	Mode          string   `json:"mode"`
	PrimeBits     int      `json:"prime_bits"`
	SenderPorts   []int    `json:"sender_ports"`
	ReceiverPorts []int    `json:"receiver_ports"`
	NodePorts     []int    `json:"node_ports"`
	Files         []string `json:"files,omitempty"`
}

type reportView struct {
	MessageSize int    `json:"message_size"`
	BundleSizes []int  `json:"bundle_sizes"`
	TotalSize   int    `json:"total_size"`
	Delivered   []int  `json:"delivered"`
	Failed      []int  `json:"failed"`
	Elapsed     string `json:"elapsed"`
	Error       string `json:"error,omitempty"`
}

type resultView struct {
	Secret      *string `json:"secret"`
	Accepted    []bool  `json:"accepted"`
	Faulty      []int   `json:"faulty"`
	Missing     []int   `json:"missing"`
	Collect     string  `json:"collect"`
	Reconstruct string  `json:"reconstruct"`
	Error       string  `json:"error,omitempty"`
}

type outcomeView struct {
	Session   sessionView `json:"session"`
	Dishonest []int       `json:"dishonest_ports"`
	Report    *reportView `json:"sender,omitempty"`
	Result    *resultView `json:"receiver,omitempty"`
}

func newSessionView(s *config.Session) sessionView {
	return sessionView{
		ID:            s.ID,
		N:             s.N,
		K:             s.K,
		T:             s.T,
		Mode:          s.Mode.String(),
		PrimeBits:     s.Prime.BitLen(),
		SenderPorts:   nonNil(s.SenderPorts),
		ReceiverPorts: nonNil(s.ReceiverPorts),
		NodePorts:     nonNil(s.NodePorts),
	}
}

func newReportView(r *sender.Report) *reportView {
	if r == nil {
		return nil
	}
	return &reportView{
		MessageSize: r.MessageSize,
		BundleSizes: nonNil(r.BundleSizes),
		TotalSize:   r.TotalSize,
		Delivered:   nonNil(r.Delivered),
		Failed:      nonNil(r.Failed),
		Elapsed:     r.Elapsed.Round(time.Microsecond).String(),
		Error:       errString(r.Errors),
	}
}

func newResultView(r *receiver.Result) *resultView {
	if r == nil {
		return nil
	}
	view := &resultView{
		Accepted:    r.Accepted,
		Faulty:      nonNil(r.Faulty),
		Missing:     nonNil(r.Missing),
		Collect:     r.CollectDuration.Round(time.Microsecond).String(),
		Reconstruct: r.ReconstructDuration.Round(time.Microsecond).String(),
		Error:       errString(r.Errors),
	}
	if r.Secret != nil {
		secret := string(r.Secret)
		view.Secret = &secret
	}
	return view
}

// PrintSession prints the parameters of a new session and the files
// written for it.
func (p *Printer) PrintSession(s *config.Session, dir string) error {
	view := newSessionView(s)
	if dir != "" {
		for _, name := range []string{config.SenderFileName, config.ReceiverFileName, config.NodesFileName} {
			view.Files = append(view.Files, filepath.Join(dir, name))
		}
	}
	switch p.format {
	case OutputFormatJSON:
		return p.printJSON(view)
	case OutputFormatText:
		p.printSessionText(view)
		for _, f := range view.Files {
			fmt.Fprintf(p.writer, "Wrote:         %s\n", f)
		}
		return nil
	default:
		return fmt.Errorf("unknown output format: %s", p.format)
	}
}

func (p *Printer) printSessionText(view sessionView) {
	fmt.Fprintf(p.writer, "Session:       %s\n", view.ID)
	fmt.Fprintf(p.writer, "Parameters:    n=%d k=%d t=%d mode=%s\n", view.N, view.K, view.T, view.Mode)
	fmt.Fprintf(p.writer, "Prime:         %d bits\n", view.PrimeBits)
	fmt.Fprintf(p.writer, "Sender ports:  %s\n", joinInts(view.SenderPorts))
	fmt.Fprintf(p.writer, "Receiver ports: %s\n", joinInts(view.ReceiverPorts))
	fmt.Fprintf(p.writer, "Node ports:    %s\n", joinInts(view.NodePorts))
}

// PrintReport prints the sender's distribution report.
func (p *Printer) PrintReport(r *sender.Report) error {
	view := newReportView(r)
	if view == nil {
		return nil
	}
	switch p.format {
	case OutputFormatJSON:
		return p.printJSON(view)
	case OutputFormatText:
		p.printReportText(view)
		return nil
	default:
		return fmt.Errorf("unknown output format: %s", p.format)
	}
}

func (p *Printer) printReportText(view *reportView) {
	fmt.Fprintf(p.writer, "Message size:  %d bytes\n", view.MessageSize)
	fmt.Fprintf(p.writer, "Bundle sizes:  %s (total %d bytes)\n", joinInts(view.BundleSizes), view.TotalSize)
	fmt.Fprintf(p.writer, "Delivered:     %s\n", joinInts(view.Delivered))
	if len(view.Failed) > 0 {
		fmt.Fprintf(p.writer, "Failed:        %s\n", joinInts(view.Failed))
	}
	fmt.Fprintf(p.writer, "Elapsed:       %s\n", view.Elapsed)
}

// PrintResult prints the receiver's reconstruction result.
func (p *Printer) PrintResult(r *receiver.Result) error {
	view := newResultView(r)
	if view == nil {
		return nil
	}
	switch p.format {
	case OutputFormatJSON:
		return p.printJSON(view)
	case OutputFormatText:
		p.printResultText(view)
		return nil
	default:
		return fmt.Errorf("unknown output format: %s", p.format)
	}
}

func (p *Printer) printResultText(view *resultView) {
	if view.Secret != nil {
		fmt.Fprintf(p.writer, "Secret:        %q\n", *view.Secret)
	} else {
		fmt.Fprintln(p.writer, "Secret:        <not reconstructed>")
	}
	fmt.Fprintf(p.writer, "Faulty:        %s\n", joinInts(view.Faulty))
	fmt.Fprintf(p.writer, "Missing:       %s\n", joinInts(view.Missing))
	fmt.Fprintf(p.writer, "Collect:       %s\n", view.Collect)
	fmt.Fprintf(p.writer, "Reconstruct:   %s\n", view.Reconstruct)
}

// PrintOutcome prints every role's result from an in-process run.
func (p *Printer) PrintOutcome(s *config.Session, out *session.Outcome) error {
	view := outcomeView{Session: newSessionView(s)}
	if out != nil {
		view.Dishonest = nonNil(out.DishonestPorts)
		view.Report = newReportView(out.Report)
		view.Result = newResultView(out.Result)
	}
	switch p.format {
	case OutputFormatJSON:
		return p.printJSON(view)
	case OutputFormatText:
		p.printSessionText(view.Session)
		fmt.Fprintf(p.writer, "Dishonest:     %s\n", joinInts(view.Dishonest))
		if view.Report != nil {
			fmt.Fprintln(p.writer)
			p.printReportText(view.Report)
		}
		if view.Result != nil {
			fmt.Fprintln(p.writer)
			p.printResultText(view.Result)
		}
		return nil
	default:
		return fmt.Errorf("unknown output format: %s", p.format)
	}
}

// PrintError prints an error message
func (p *Printer) PrintError(err error) error {
	switch p.format {
	case OutputFormatJSON:
		return p.printJSON(map[string]any{
			"status": "error",
			"error":  err.Error(),
		})
	default:
		fmt.Fprintf(p.writer, "Error: %v\n", err)
		return nil
	}
}

func (p *Printer) printJSON(data any) error {
	encoder := json.NewEncoder(p.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

func joinInts(xs []int) string {
	if len(xs) == 0 {
		return "-"
	}
	parts := make([]string, len(xs))
	for i, x := range xs {
		parts[i] = fmt.Sprint(x)
	}
	return strings.Join(parts, ",")
}

func nonNil[T any](xs []T) []T {
	if xs == nil {
		return []T{}
	}
	return xs
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
