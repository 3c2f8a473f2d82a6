package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"plugdoc/internal/config"
	"plugdoc/internal/crawler"
	"plugdoc/internal/generator"
	"plugdoc/internal/ir"
	"plugdoc/internal/nvim"
	"plugdoc/internal/region"
	"plugdoc/internal/ui"
)

// Region markers in the README.
const (
	APIBegin      = `^<!-- API -->$`
	APIEnd        = `^<!-- /API -->$`
	TOCBegin      = `^<!-- TOC -->$`
	TOCEnd        = `^<!-- /TOC -->$`
	CommandsBegin = `^## Commands`
	SectionEnd    = `^#`
)

// StepError names the step that aborted a run.
type StepError struct {
	Step string
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %s failed: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

type stepResult struct {
	counters map[string]float64
	files    []string
}

type step struct {
	name string
	run  func(ctx context.Context) (stepResult, error)
}

// DocSync regenerates a plugin's README regions and help file.
type DocSync struct {
	cfg    *config.Config
	nvim   nvim.Evaluator
	report *RunReport
}

func NewDocSync(cfg *config.Config, ev nvim.Evaluator) *DocSync {
	return &DocSync{cfg: cfg, nvim: ev, report: NewRunReport(cfg.Project.Module)}
}

// Report is the record of the last Run.
func (s *DocSync) Report() *RunReport {
	return s.report
}

// Run executes the api, commands, toc and vimdoc steps in that order and stops
// at the first failure. Files rewritten by earlier steps stay rewritten.
func (s *DocSync) Run(ctx context.Context) error {
	steps := []step{
		{"api", s.updateAPI},
		{"commands", s.updateCommands},
		{"toc", s.updateTOC},
		{"vimdoc", s.generateVimdoc},
	}
	s.report = NewRunReport(s.cfg.Project.Module)
	defer s.saveReport()

	ui.Header("📚 Syncing docs for %s", s.cfg.Project.Module)
	for _, st := range steps {
		if err := ctx.Err(); err != nil {
			return &StepError{Step: st.name, Err: err}
		}
		h := s.report.beginStep(st.name)
		res, err := st.run(ctx)
		ui.Step(st.name, s.report.endStep(h, res, err), err)
		if err != nil {
			s.report.addSignal(st.name+"_failed", st.name, "critical", err.Error())
			return &StepError{Step: st.name, Err: err}
		}
	}
	ui.Summary(s.report.FilesWritten())
	return nil
}

func (s *DocSync) saveReport() {
	if s.cfg.Report == "" {
		return
	}
	path := s.cfg.Resolve(s.cfg.Report)
	if err := s.report.Save(path); err != nil {
		ui.Warning("⚠️  Failed to write run report: %v", err)
	}
}

func (s *DocSync) readmePath() string {
	return s.cfg.Resolve(s.cfg.Readme.Path)
}

func (s *DocSync) loadAPI() (*crawler.Project, *ir.FileAPI, error) {
	project, err := crawler.ParseDirectory(s.cfg.Resolve(s.cfg.Source.Dir))
	if err != nil {
		return nil, nil, err
	}
	file, ok := project.File(s.cfg.Source.APIFile)
	if !ok {
		return nil, nil, fmt.Errorf("no source file %s in %s", s.cfg.Source.APIFile, s.cfg.Source.Dir)
	}
	return project, file, nil
}

// updateAPI regenerates the function reference between the API markers.
func (s *DocSync) updateAPI(ctx context.Context) (stepResult, error) {
	project, file, err := s.loadAPI()
	if err != nil {
		return stepResult{}, err
	}
	funcs := file.PublicFunctions()
	if len(funcs) == 0 {
		s.report.addSignal("no_functions", "api", "warning", "No documented public functions in "+file.Path)
	}
	r := generator.MarkdownRenderer{HeadingLevel: s.cfg.Readme.HeadingLevel}
	lines := pad(r.API(funcs, project.Types))
	if err := region.ReplaceFile(s.readmePath(), APIBegin, APIEnd, lines); err != nil {
		return stepResult{}, err
	}
	return stepResult{
		counters: map[string]float64{
			"files_parsed": float64(len(project.Files)),
			"functions":    float64(len(funcs)),
			"types":        float64(project.Types.Len()),
		},
		files: []string{s.cfg.Readme.Path},
	}, nil
}

// updateCommands regenerates the command table below "## Commands".
func (s *DocSync) updateCommands(ctx context.Context) (stepResult, error) {
	cmds, err := nvim.FetchCommands(ctx, s.nvim, s.cfg.Nvim.CommandsExpr)
	if err != nil {
		return stepResult{}, err
	}
	active := ir.ActiveCommands(cmds)
	if len(active) == 0 {
		s.report.addSignal("no_commands", "commands", "info", "The plugin reported no active commands")
	}
	lines := pad(generator.MarkdownRenderer{}.Commands(cmds))
	if err := region.ReplaceFile(s.readmePath(), CommandsBegin, SectionEnd, lines); err != nil {
		return stepResult{}, err
	}
	return stepResult{
		counters: map[string]float64{
			"commands":   float64(len(active)),
			"deprecated": float64(len(cmds) - len(active)),
		},
		files: []string{s.cfg.Readme.Path},
	}, nil
}

// updateTOC rebuilds the table of contents from the README's own headings.
func (s *DocSync) updateTOC(ctx context.Context) (stepResult, error) {
	data, err := os.ReadFile(s.readmePath())
	if err != nil {
		return stepResult{}, fmt.Errorf("failed to read %s: %w", s.cfg.Readme.Path, err)
	}
	toc, err := generator.GenerateTOC(data, s.cfg.Readme.TOCDepth)
	if err != nil {
		return stepResult{}, err
	}
	if err := region.ReplaceFile(s.readmePath(), TOCBegin, TOCEnd, pad(toc)); err != nil {
		return stepResult{}, err
	}
	return stepResult{
		counters: map[string]float64{"entries": float64(len(toc))},
		files:    []string{s.cfg.Readme.Path},
	}, nil
}

// generateVimdoc rewrites the help file from scratch.
func (s *DocSync) generateVimdoc(ctx context.Context) (stepResult, error) {
	module := s.cfg.Project.Module
	width := s.cfg.Vimdoc.Width
	r := generator.VimdocRenderer{Module: module, Width: width}

	cmds, err := nvim.FetchCommands(ctx, s.nvim, s.cfg.Nvim.CommandsExpr)
	if err != nil {
		return stepResult{}, err
	}
	project, file, err := s.loadAPI()
	if err != nil {
		return stepResult{}, err
	}
	readme, err := os.ReadFile(s.readmePath())
	if err != nil {
		return stepResult{}, fmt.Errorf("failed to read %s: %w", s.cfg.Readme.Path, err)
	}
	optionsBegin, err := regexp.Compile(s.cfg.Vimdoc.OptionsSection)
	if err != nil {
		return stepResult{}, fmt.Errorf("invalid options section pattern %q: %w", s.cfg.Vimdoc.OptionsSection, err)
	}
	options, err := generator.ConvertMarkdownSection(string(readme), optionsBegin, regexp.MustCompile(SectionEnd), module, "options", module+"-options", width)
	if err != nil {
		return stepResult{}, err
	}

	doc := generator.NewVimdoc(filepath.Base(s.cfg.Vimdoc.Path), module, width)
	doc.Sections = []generator.VimdocSection{
		{Title: "Commands", Tag: module + "-commands", Body: r.Commands(cmds)},
		{Title: "API", Tag: module + "-api", Body: r.API(file.PublicFunctions(), project.Types)},
		options,
	}
	if err := region.WriteFile(s.cfg.Resolve(s.cfg.Vimdoc.Path), []byte(doc.String())); err != nil {
		return stepResult{}, err
	}
	return stepResult{
		counters: map[string]float64{"sections": float64(len(doc.Sections))},
		files:    []string{s.cfg.Vimdoc.Path},
	}, nil
}

// pad surrounds generated lines with blank lines so they stand apart from
// the markers.
func pad(lines []string) []string {
	out := make([]string, 0, len(lines)+2)
	out = append(out, "")
	out = append(out, lines...)
	return append(out, "")
}
