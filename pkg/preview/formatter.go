package preview

import (
	"fmt"
	"strconv"
	"strings"
)

// TitlePlaceholder is shown in place of a title that has not arrived yet.
const TitlePlaceholder = "Generating paper..."

// Format renders r as preview text. The output depends only on r, so two
// textually identical records always format to identical strings.
//
// Layout:
//
//	📝 <title>
//	<description>
//
//	1. <sentence>
//	   <translation>
//
//	2. ...
//
// The description and translation lines are omitted when empty.
func Format(r Record) string {
	var b strings.Builder

	title := r.Title
	if title == "" {
		title = TitlePlaceholder
	}
	b.WriteString("📝 ")
	b.WriteString(title)
	b.WriteByte('\n')

	if r.Description != "" {
		b.WriteString(r.Description)
		b.WriteByte('\n')
	}
	b.WriteByte('\n')

	for i, item := range r.Items {
		b.WriteString(strconv.Itoa(i + 1))
		b.WriteString(". ")
		b.WriteString(item.Primary)
		b.WriteByte('\n')
		if item.Secondary != "" {
			b.WriteString("   ")
			b.WriteString(item.Secondary)
			b.WriteByte('\n')
		}
		b.WriteByte('\n')
	}

	return b.String()
}

// Progress is the status line shown while a paper is streaming.
func Progress(r Record) string {
	if len(r.Items) == 1 {
		return "1 question generated"
	}
	return fmt.Sprintf("%d questions generated", len(r.Items))
}
