package render

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"meetscribe/internal/domain"
)

const notificationTemplate = `Meeting recap: {{ .Title }}

{{ .Summary }}
{{- if .Items }}

Action items:
{{- range .Items }}
- {{ . }}
{{- end }}
{{- end }}
`

var notification = template.Must(template.New("notification").Parse(notificationTemplate))

type notificationData struct {
	Title   string
	Summary string
	Items   []string
}

// NotificationText renders a short team notification for sharing a summary.
func NotificationText(result domain.SummaryResult) (string, error) {
	data := notificationData{
		Title:   Heading(result.Title),
		Summary: strings.TrimSpace(result.ShortSummary),
	}
	for _, item := range result.ActionItems {
		data.Items = append(data.Items, ActionItemLine(item))
	}

	var buf bytes.Buffer
	if err := notification.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("executing notification template: %w", err)
	}
	return buf.String(), nil
}
