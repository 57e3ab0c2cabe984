package statement

import (
	"strings"

	"github.com/Aashish23092/statement-extraction/dto"
	"github.com/Aashish23092/statement-extraction/utils"
	"github.com/Aashish23092/statement-extraction/utils/columns"
)

// Table is a grid pulled out of a document by a table engine. Header holds
// the header cell texts; rows may be ragged.
type Table struct {
	Header []string
	Rows   [][]string
}

// Columns reports the role of each header column, RoleUnknown where none was
// resolved.
func (t Table) Columns() []columns.Role {
	m, _ := columns.Classify(t.Header, t.Rows)
	return m.Roles(len(t.Header))
}

// ParseTable classifies the header and converts every usable row. It reports
// false when the table has no resolvable date or description column.
func ParseTable(t Table) ([]dto.Transaction, bool) {
	m, ok := columns.Classify(t.Header, t.Rows)
	if !ok {
		return nil, false
	}

	var out []dto.Transaction
	for _, row := range t.Rows {
		if tx, ok := parseRow(row, m); ok {
			out = append(out, tx)
		}
	}
	return out, true
}

func parseRow(row []string, m columns.Mapping) (dto.Transaction, bool) {
	date, ok := utils.ParseDate(cellAt(row, m.Date))
	if !ok {
		return dto.Transaction{}, false
	}
	desc := utils.CollapseWhitespace(cellAt(row, m.Description))
	if desc == "" || strings.EqualFold(desc, "nan") {
		return dto.Transaction{}, false
	}

	t := dto.Transaction{
		TransactionDate: date,
		Description:     desc,
		RawDescription:  strings.Join(row, " | "),
		DebitAmount:     positive(cellAt(row, m.Debit)),
		CreditAmount:    positive(cellAt(row, m.Credit)),
		Balance:         positive(cellAt(row, m.Balance)),
		ConfidenceScore: 1.0,
	}

	// a single signed amount column stands in for debit and credit
	if m.Debit < 0 && m.Credit < 0 && m.Amount >= 0 {
		if a, ok := utils.ParseAmount(cellAt(row, m.Amount)); ok {
			switch {
			case a.IsNegative():
				t.DebitAmount = dto.DecimalPtr(a.Abs())
			case a.IsPositive():
				t.CreditAmount = dto.DecimalPtr(a)
			}
		}
	}
	return t, true
}

func cellAt(row []string, col int) string {
	if col < 0 || col >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[col])
}
