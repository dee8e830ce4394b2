// Package prompt collects filter criteria interactively from the terminal.
// It is a thin presentation layer over selector.Criteria: the prompter reads
// answers from any io.Reader, so the flow is testable without a TTY.
package prompt

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"s3fetch/internal/errors"
	"s3fetch/internal/selector"
)

// DateLayout is the calendar date format the prompt accepts.
const DateLayout = "02-01-2006"

// Prompter asks the user for filter criteria and a download directory.
type Prompter struct {
	in  *bufio.Scanner
	out io.Writer
}

// New creates a prompter reading answers from in and writing questions to out.
func New(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{
		in:  bufio.NewScanner(in),
		out: out,
	}
}

// Criteria walks the user through the criteria questions and returns the
// resulting selection parameters. Unparseable answers are rejected as
// ErrInvalidCriteria rather than re-asked, so a scripted caller fails fast.
func (p *Prompter) Criteria() (selector.Criteria, error) {
	mode, err := p.ask("Filter by last N days or an exact date? [days/date]: ")
	if err != nil {
		return selector.Criteria{}, err
	}

	var criteria selector.Criteria

	switch strings.ToLower(mode) {
	case "days", "d", "":
		criteria.Mode = selector.ModeLastNDays
		answer, err := p.ask("Number of days back: ")
		if err != nil {
			return selector.Criteria{}, err
		}
		days, err := strconv.Atoi(answer)
		if err != nil {
			return selector.Criteria{}, errors.NewError("prompt", errors.ErrInvalidCriteria).
				WithMessage("not a number: " + answer)
		}
		criteria.Days = days
	case "date":
		criteria.Mode = selector.ModeExactDate
		answer, err := p.ask("Date (DD-MM-YYYY): ")
		if err != nil {
			return selector.Criteria{}, err
		}
		date, err := ParseDate(answer)
		if err != nil {
			return selector.Criteria{}, err
		}
		criteria.Date = date
	default:
		return selector.Criteria{}, errors.NewError("prompt", errors.ErrInvalidCriteria).
			WithMessage("expected 'days' or 'date', got " + mode)
	}

	pattern, err := p.ask("Filename filter (empty for all): ")
	if err != nil {
		return selector.Criteria{}, err
	}
	criteria.NamePattern = pattern

	if err := criteria.Validate(); err != nil {
		return selector.Criteria{}, err
	}

	return criteria, nil
}

// Dir asks for the download directory, falling back to def when the answer
// is empty.
func (p *Prompter) Dir(def string) (string, error) {
	answer, err := p.ask(fmt.Sprintf("Download directory [%s]: ", def))
	if err != nil {
		return "", err
	}
	if answer == "" {
		return def, nil
	}
	return answer, nil
}

// ask writes the question and returns the trimmed answer line.
func (p *Prompter) ask(question string) (string, error) {
	if _, err := fmt.Fprint(p.out, question); err != nil {
		return "", errors.NewError("prompt", err)
	}
	if !p.in.Scan() {
		if err := p.in.Err(); err != nil {
			return "", errors.NewError("prompt", err)
		}
		return "", errors.NewError("prompt", io.EOF).WithMessage("input closed")
	}
	return strings.TrimSpace(p.in.Text()), nil
}

// ParseDate parses a DD-MM-YYYY calendar date in UTC.
// Unparseable dates are rejected as ErrInvalidCriteria.
func ParseDate(value string) (time.Time, error) {
	date, err := time.ParseInLocation(DateLayout, value, time.UTC)
	if err != nil {
		return time.Time{}, errors.NewError("parseDate", errors.ErrInvalidCriteria).
			WithMessage("expected DD-MM-YYYY, got " + value)
	}
	return date, nil
}
