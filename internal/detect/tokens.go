package detect

import (
	"regexp"
	"strings"

	"github.com/pfo-dev/pfo/internal/schema"
)

var (
	localDateRe   = regexp.MustCompile(`^(\d{2})/(\d{2})/(\d{4})$`)
	numericCellRe = regexp.MustCompile(`^[+-]?\d[\d.,]*$`)
)

// RepairCell rewrites a day-first date cell to ISO, and a locale-formatted
// number cell to a plain decimal-point number. Free text is never touched,
// so digits inside descriptions survive.
func RepairCell(cell string) string {
	v := strings.TrimSpace(cell)
	if m := localDateRe.FindStringSubmatch(v); m != nil {
		return m[3] + "-" + m[2] + "-" + m[1]
	}
	if numericCellRe.MatchString(v) {
		sign := ""
		if v[0] == '-' || v[0] == '+' {
			sign, v = v[:1], v[1:]
		}
		if sign == "+" {
			sign = ""
		}
		return sign + repairNumber(v)
	}
	return cell
}

// repairNumber rewrites one run of digits and separators.
//
//	"1.234,56"  -> "1234.56"
//	"1000,00"   -> "1000.00"
//	"1.234.567" -> "1234567"
//	"1.234"     -> "1.234"   (could be a three-digit fraction)
//	"1234.56"   -> "1234.56"
func repairNumber(run string) string {
	if strings.Count(run, ",") == 1 {
		intPart, frac, _ := strings.Cut(run, ",")
		if frac == "" || strings.Contains(frac, ".") {
			return run
		}
		if strings.Contains(intPart, ".") {
			if !schema.IsGrouped(intPart) {
				return run
			}
			intPart = strings.ReplaceAll(intPart, ".", "")
		}
		return intPart + "." + frac
	}
	if !strings.Contains(run, ",") && strings.Count(run, ".") > 1 && schema.IsGrouped(run) {
		return strings.ReplaceAll(run, ".", "")
	}
	return run
}
