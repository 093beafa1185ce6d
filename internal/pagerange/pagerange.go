// Package pagerange parses the --pages RANGE expression (§6), ported from
// the teacher's pkg/api/selectPages.go page-selection grammar: a
// comma-separated list of {even|odd|#|#-#|#-|-#|!#} tokens evaluated
// strictly left to right, each either selecting or (with a leading "!" or
// "n") deselecting pages. "l" as a token stands for the last page, so
// "l-5" means "5 pages before the last".
package pagerange

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

var selectionExp = setupRegExp()

func setupRegExp() *regexp.Regexp {
	e := `(\d+)?-l(-\d+)?|l(-(\d+)-?)?`
	e = `[!n]?((-\d+)|(\d+(-(\d+)?)?)|` + e + `)`
	e = `\Qeven\E|\Qodd\E|` + e
	exp := "^" + e + "(," + e + ")*$"
	re, err := regexp.Compile(exp)
	if err != nil {
		panic(err)
	}
	return re
}

// Parse validates s and splits it into its comma-separated tokens. An
// empty s is valid and means "all pages".
func Parse(s string) ([]string, error) {
	if s == "" {
		return nil, nil
	}
	if !selectionExp.MatchString(s) {
		return nil, errors.Errorf("pagerange: %q: syntax error", s)
	}
	return strings.Split(s, ","), nil
}

// Pages resolves a parsed selection against pageCount into a sorted,
// deduplicated, ascending list of 1-based page numbers. A nil/empty
// selection (no --pages flag given) yields every page.
func Pages(pageCount int, selection []string) ([]int, error) {
	if len(selection) == 0 {
		all := make([]int, pageCount)
		for i := range all {
			all[i] = i + 1
		}
		return all, nil
	}

	selected := map[int]bool{}

	for _, v := range selection {
		switch v {
		case "even":
			selectEven(selected, pageCount)
			continue
		case "odd":
			selectOdd(selected, pageCount)
			continue
		}

		negated := false
		if v[0] == '!' || v[0] == 'n' {
			negated = true
			v = v[1:]
		}

		switch {
		case v[0] == '-':
			if err := applyPrefix(v[1:], negated, pageCount, selected); err != nil {
				return nil, err
			}
		case v[0] != 'l' && strings.HasSuffix(v, "-"):
			if err := applySuffix(v[:len(v)-1], negated, pageCount, selected); err != nil {
				return nil, err
			}
		case v[0] == 'l':
			if err := applySingleOrLast(v, negated, pageCount, selected); err != nil {
				return nil, err
			}
		default:
			pr := strings.Split(v, "-")
			if len(pr) >= 2 {
				if err := applyRange(pr, negated, pageCount, selected); err != nil {
					return nil, err
				}
				continue
			}
			if err := applySingleOrLast(pr[0], negated, pageCount, selected); err != nil {
				return nil, err
			}
		}
	}

	var out []int
	for p, ok := range selected {
		if ok {
			out = append(out, p)
		}
	}
	sort.Ints(out)
	return out, nil
}

func selectEven(sel map[int]bool, pageCount int) {
	for i := 2; i <= pageCount; i += 2 {
		if _, found := sel[i]; !found {
			sel[i] = true
		}
	}
}

func selectOdd(sel map[int]bool, pageCount int) {
	for i := 1; i <= pageCount; i += 2 {
		if _, found := sel[i]; !found {
			sel[i] = true
		}
	}
}

func applyPrefix(v string, negated bool, pageCount int, sel map[int]bool) error {
	if v == "l" {
		for j := 1; j <= pageCount; j++ {
			sel[j] = !negated
		}
		return nil
	}
	if strings.HasPrefix(v, "l-") {
		i, err := strconv.Atoi(v[2:])
		if err != nil {
			return err
		}
		if pageCount-i < 1 {
			return nil
		}
		for j := 1; j <= pageCount-i; j++ {
			sel[j] = !negated
		}
		return nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return err
	}
	if i > pageCount {
		i = pageCount
	}
	for j := 1; j <= i; j++ {
		sel[j] = !negated
	}
	return nil
}

func applySuffix(v string, negated bool, pageCount int, sel map[int]bool) error {
	i, err := strconv.Atoi(v)
	if err != nil {
		return err
	}
	if i > pageCount {
		return nil
	}
	for j := i; j <= pageCount; j++ {
		sel[j] = !negated
	}
	return nil
}

func applySingleOrLast(s string, negated bool, pageCount int, sel map[int]bool) error {
	if s == "l" {
		sel[pageCount] = !negated
		return nil
	}
	if strings.HasPrefix(s, "l-") {
		pr := strings.Split(s[2:], "-")
		i, err := strconv.Atoi(pr[0])
		if err != nil {
			return err
		}
		if pageCount-i < 1 {
			return nil
		}
		j := pageCount - i
		if strings.HasSuffix(s, "-") {
			j = pageCount
		}
		for k := pageCount - i; k <= j; k++ {
			sel[k] = !negated
		}
		return nil
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		return err
	}
	if i > pageCount {
		return nil
	}
	sel[i] = !negated
	return nil
}

func applyRange(pr []string, negated bool, pageCount int, sel map[int]bool) error {
	from, err := strconv.Atoi(pr[0])
	if err != nil {
		return err
	}
	if from > pageCount {
		return nil
	}

	var thru int
	if pr[1] == "l" {
		thru = pageCount
		if len(pr) == 3 {
			i, err := strconv.Atoi(pr[2])
			if err != nil {
				return err
			}
			thru -= i
		}
	} else {
		thru, err = strconv.Atoi(pr[1])
		if err != nil {
			return err
		}
	}

	if thru < from {
		return nil
	}
	if thru > pageCount {
		thru = pageCount
	}
	for i := from; i <= thru; i++ {
		sel[i] = !negated
	}
	return nil
}
