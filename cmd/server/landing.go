package main

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
)

type landingPage struct {
	html []byte
}

var landingTemplate = template.Must(template.New("landing").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Imgur proxy</title>
</head>
<body>
<h1>Imgur proxy</h1>
<form action="{{.BasePath}}/proxy" method="get">
<input type="text" name="url" placeholder="https://imgur.com/abc1234" size="48" required>
<button type="submit">Open</button>
</form>
<p>Links can also be written by hand:</p>
<ul>
<li><code>{{.BasePath}}/proxy?url=https://i.imgur.com/abc1234.png</code></li>
<li><code>{{.BasePath}}/i/abc1234.png</code></li>
<li><code>{{.BasePath}}/abc1234</code>, the file extension is detected automatically ({{.Extensions}})</li>
</ul>
</body>
</html>
`))

func newLandingPage(basePath string, extensions []string) (*landingPage, error) {
	buffer := bytes.Buffer{}
	err := landingTemplate.Execute(&buffer, struct {
		BasePath   string
		Extensions string
	}{basePath, strings.Join(extensions, ", ")})
	if err != nil {
		return nil, fmt.Errorf("rendering landing page: %w", err)
	}

	return &landingPage{buffer.Bytes()}, nil
}
