package script

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

// StepResult is the outcome of one step.
type StepResult struct {
	Seq    int    `json:"seq"`
	Cell   string `json:"cell"`
	Op     Op     `json:"op"`
	Result string `json:"result"`
	Expect string `json:"expect,omitempty"`
	OK     bool   `json:"ok"`
}

// Report is the outcome of a script run.
type Report struct {
	Script     string            `json:"script"`
	StartedAt  time.Time         `json:"started_at"`
	FinishedAt time.Time         `json:"finished_at"`
	Steps      []StepResult      `json:"steps"`
	Failures   int               `json:"failures"`
	Final      map[string]string `json:"final"`
}

// Err returns an error wrapping ErrExpectation if any step's result did not
// match its expectation.
func (r *Report) Err() error {
	if r.Failures == 0 {
		return nil
	}
	return fmt.Errorf("%s: %w: %d of %d steps", r.Script, ErrExpectation, r.Failures, len(r.Steps))
}

// Runner executes scripts.
type Runner struct {
	log logrus.FieldLogger
	now func() time.Time
}

// NewRunner returns a Runner logging to log. A nil log discards output.
func NewRunner(log logrus.FieldLogger) *Runner {
	if log == nil {
		l := logrus.New()
		l.SetLevel(logrus.PanicLevel)
		log = l
	}
	return &Runner{log: log, now: time.Now}
}

// Run builds the script's cells and applies every step in order. A failed
// expectation is recorded in the report and does not stop the run; an
// invalid argument does and is returned as an error.
func (r *Runner) Run(s *Script) (*Report, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}

	log := r.log.WithField("script", s.Name)
	report := &Report{
		Script:    s.Name,
		StartedAt: r.now(),
		Steps:     make([]StepResult, 0, len(s.Steps)),
		Final:     make(map[string]string, len(s.Cells)),
	}

	slots := make(map[string]slot, len(s.Cells))
	for _, d := range s.Cells {
		sl, err := newSlot(d)
		if err != nil {
			return nil, fmt.Errorf("cell %q: %w", d.Name, err)
		}
		slots[d.Name] = sl
		log.WithFields(logrus.Fields{"cell": d.Name, "kind": d.Kind}).Debug("declared cell")
	}

	for i := range s.Steps {
		st := &s.Steps[i]
		res, err := slots[st.Cell].apply(st.Op, &st.Arg)
		if err != nil {
			return nil, fmt.Errorf("step %d: %w", i+1, err)
		}

		sr := StepResult{Seq: i + 1, Cell: st.Cell, Op: st.Op, Result: res, OK: true}
		if st.HasExpect() {
			want, err := slots[st.Cell].expect(st.Op, &st.Expect)
			if err != nil {
				return nil, fmt.Errorf("step %d: expect: %w", i+1, err)
			}
			sr.Expect = want
			sr.OK = sr.Expect == res
		}
		if !sr.OK {
			report.Failures++
			log.WithFields(logrus.Fields{
				"step":   sr.Seq,
				"cell":   sr.Cell,
				"op":     sr.Op,
				"result": sr.Result,
				"expect": sr.Expect,
			}).Warn("expectation failed")
		} else {
			log.WithFields(logrus.Fields{
				"step":   sr.Seq,
				"cell":   sr.Cell,
				"op":     sr.Op,
				"result": sr.Result,
			}).Debug("applied step")
		}
		report.Steps = append(report.Steps, sr)
	}

	for name, sl := range slots {
		report.Final[name] = sl.String()
	}
	report.FinishedAt = r.now()
	return report, nil
}
