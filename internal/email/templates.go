package email

import (
	"bytes"
	"html/template"
)

var leadAssignedTemplate = template.Must(template.New("lead_assigned").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #1f2933;">
	<h2>New lead assigned</h2>
	<p>Hi {{.RealtorName}},</p>
	<p>A new buyer lead was just assigned to you{{if .MatchReason}} ({{.MatchReason}}){{end}}:</p>
	<ul>
		<li><strong>Buyer:</strong> {{.BuyerName}}</li>
		<li><strong>Location:</strong> {{.City}}, {{.State}}</li>
		{{if .Phone}}<li><strong>Phone:</strong> {{.Phone}}</li>{{end}}
	</ul>
	<p>Please reach out within one business day.</p>
</body>
</html>`))

func renderLeadAssigned(data LeadAssignedData) (string, error) {
	var buf bytes.Buffer
	if err := leadAssignedTemplate.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
