package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/fatih/color"
	"gopkg.in/yaml.v3"

	"github.com/pboyd/wxprobe"
)

type renderFunc func(io.Writer, *wxprobe.Report, config) error

var renderers = map[string]renderFunc{
	"text": renderText,
	"json": renderJSON,
	"yaml": renderYAML,
}

// reportView is the serialized form of a report.
type reportView struct {
	Verdict         string   `json:"verdict" yaml:"verdict"`
	WXEnforced      bool     `json:"wx_enforced" yaml:"wx_enforced"`
	Arch            string   `json:"arch,omitempty" yaml:"arch,omitempty"`
	Entry           string   `json:"entry" yaml:"entry"`
	PageSize        int      `json:"page_size" yaml:"page_size"`
	Region          string   `json:"region,omitempty" yaml:"region,omitempty"`
	Offset          int      `json:"offset" yaml:"offset"`
	Baseline        int      `json:"baseline" yaml:"baseline"`
	Result          *int     `json:"result,omitempty" yaml:"result,omitempty"`
	Restored        bool     `json:"restored" yaml:"restored"`
	FinalProtection string   `json:"final_protection,omitempty" yaml:"final_protection,omitempty"`
	Error           string   `json:"error,omitempty" yaml:"error,omitempty"`
	InvalidateError string   `json:"invalidate_error,omitempty" yaml:"invalidate_error,omitempty"`
	Before          []string `json:"before,omitempty" yaml:"before,omitempty"`
	After           []string `json:"after,omitempty" yaml:"after,omitempty"`
}

func newReportView(rep *wxprobe.Report, cfg config) reportView {
	view := reportView{
		Verdict:    rep.Verdict.String(),
		WXEnforced: rep.Verdict.WXEnforced(),
		Arch:       rep.Arch,
		Entry:      fmt.Sprintf("%#x", rep.Entry),
		PageSize:   rep.PageSize,
		Offset:     rep.Offset,
		Baseline:   rep.Baseline,
		Restored:   rep.Restored,
	}
	if rep.Region.Len > 0 {
		view.Region = rep.Region.String()
	}
	if rep.Verdict == wxprobe.Success || rep.Verdict == wxprobe.PatchIneffective {
		result := rep.Result
		view.Result = &result
	}
	if rep.Elevated && rep.FinalProtectionErr == nil {
		view.FinalProtection = rep.FinalProtection.String()
	}
	if err := rep.Err(); err != nil {
		view.Error = err.Error()
	}
	if rep.InvalidateErr != nil {
		view.InvalidateError = rep.InvalidateErr.Error()
	}
	if cfg.Describe {
		view.Before = rep.Before
		view.After = rep.After
	}
	return view
}

func renderJSON(w io.Writer, rep *wxprobe.Report, cfg config) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(newReportView(rep, cfg))
}

func renderYAML(w io.Writer, rep *wxprobe.Report, cfg config) error {
	enc := yaml.NewEncoder(w)
	defer enc.Close()
	return enc.Encode(newReportView(rep, cfg))
}

// renderText prints a green banner when the routine was patched and a red one
// otherwise, followed by the details.
func renderText(w io.Writer, rep *wxprobe.Report, cfg config) error {
	var banner *color.Color
	var lines []string
	if rep.Verdict == wxprobe.Success {
		banner = color.New(color.BgGreen, color.FgHiWhite, color.Bold)
		lines = []string{"SMC SUCCESS!", "MEMORY PATCHED"}
	} else {
		banner = color.New(color.BgRed, color.FgHiWhite, color.Bold)
		lines = []string{"SMC FAILED", rep.Verdict.String()}
	}
	if cfg.NoColor {
		banner.DisableColor()
	}
	for _, line := range lines {
		if _, err := banner.Fprintf(w, " %-16s ", line); err != nil {
			return err
		}
		fmt.Fprintln(w)
	}

	view := newReportView(rep, cfg)
	fmt.Fprintf(w, "\nW^X enforced:  %v\n", view.WXEnforced)
	if view.Arch != "" {
		fmt.Fprintf(w, "arch:          %s\n", view.Arch)
	}
	fmt.Fprintf(w, "entry:         %s\n", view.Entry)
	if view.Region != "" {
		fmt.Fprintf(w, "page region:   %s (page size %d)\n", view.Region, view.PageSize)
	}
	if view.Offset >= 0 {
		fmt.Fprintf(w, "patch offset:  %d\n", view.Offset)
	}
	fmt.Fprintf(w, "baseline:      %d\n", view.Baseline)
	if view.Result != nil {
		fmt.Fprintf(w, "after patch:   %d\n", *view.Result)
	}
	if view.FinalProtection != "" {
		fmt.Fprintf(w, "protection:    %s\n", view.FinalProtection)
	}
	if view.Error != "" {
		fmt.Fprintf(w, "error:         %s\n", view.Error)
	}

	for _, section := range []struct {
		name  string
		lines []string
	}{
		{"before", view.Before},
		{"after", view.After},
	} {
		if len(section.lines) == 0 {
			continue
		}
		fmt.Fprintf(w, "\nmemory map %s:\n", section.name)
		for _, line := range section.lines {
			fmt.Fprintf(w, "  %s\n", line)
		}
	}

	return nil
}
