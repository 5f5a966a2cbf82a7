package domain

import "strings"

// IssueFilter describes an issue search. Zero-value fields are omitted from
// the generated query.
type IssueFilter struct {
	Repository string // full name; takes precedence over Owner
	Owner      *Owner
	Assignees  []string
	Labels     []string
	Milestone  string // milestone title
	State      string // "open", "closed", or "" for both
	Sort       string // e.g. "created-desc", "comments-asc"
	Keyword    string // free-text search term
}

// Query assembles the search DSL string understood by the issue search
// endpoint, e.g. `type:issue repo:acme/api label:bug is:open sort:created-desc`.
// Values containing spaces are quoted.
func (f IssueFilter) Query() string {
	qualifiers := []string{"type:issue"}

	if f.Repository != "" {
		qualifiers = append(qualifiers, "repo:"+f.Repository)
	} else if f.Owner != nil {
		qualifiers = append(qualifiers, f.Owner.Qualifier())
	}

	for _, assignee := range f.Assignees {
		qualifiers = append(qualifiers, "assignee:"+quoteIfSpaced(assignee))
	}

	for _, label := range f.Labels {
		qualifiers = append(qualifiers, "label:"+quoteIfSpaced(label))
	}

	if f.Milestone != "" {
		qualifiers = append(qualifiers, `milestone:"`+f.Milestone+`"`)
	}

	if f.Sort != "" {
		qualifiers = append(qualifiers, "sort:"+f.Sort)
	}

	if f.State != "" {
		qualifiers = append(qualifiers, "is:"+f.State)
	}

	if f.Keyword != "" {
		qualifiers = append(qualifiers, quoteIfSpaced(f.Keyword))
	}

	return strings.Join(qualifiers, " ")
}

func quoteIfSpaced(value string) string {
	if strings.Contains(value, " ") {
		return `"` + value + `"`
	}
	return value
}
