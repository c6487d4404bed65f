package warehouse

import (
	"fmt"
	"strings"
)

// DestinationTable is the table every load lands in.
const DestinationTable = "vendas"

// CopyCommand is a Redshift COPY of one CSV object into a table.
type CopyCommand struct {
	Table   string
	Source  string
	IAMRole string
}

// NewCopyCommand targets DestinationTable.
func NewCopyCommand(source, iamRole string) CopyCommand {
	return CopyCommand{
		Table:   DestinationTable,
		Source:  source,
		IAMRole: iamRole,
	}
}

// SQL renders the command. The first line of the file is a header and is
// skipped; fields are comma separated.
func (c CopyCommand) SQL() string {
	return fmt.Sprintf(
		"COPY %s FROM '%s'\nCREDENTIALS 'aws_iam_role=%s'\nCSV\nIGNOREHEADER 1\nDELIMITER ','",
		c.Table,
		escapeLiteral(c.Source),
		escapeLiteral(c.IAMRole))
}

// escapeLiteral doubles single quotes so the value stays inside its literal.
func escapeLiteral(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}
