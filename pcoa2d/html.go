// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"html/template"
	"io"

	"github.com/caporaso-lab/gut-to-soil-manuscript-figures/pcoa"
)

const htmlIndex = `<!DOCTYPE html>
<html>
  <head>
    <meta charset="utf-8" />
    <title>2D PCoA Plot</title>
    <style>
body {
  font-family: sans-serif;
  color: #222;
}
table {
  border-spacing: 0;
  border-collapse: collapse;
}
table>caption {
  padding-top: 8px;
  padding-bottom: 8px;
  color: #777;
  text-align: left;
}
table>tbody>tr>td, table>thead>tr>th {
  padding: 4px 8px;
  border-top: 1px solid #ddd;
}
th {
  text-align: left;
}
td.n {
  text-align: right;
}
    </style>
  </head>
  <body>
    <h1>2D PCoA Plot</h1>
    <p><a href="{{.Plot}}"><img src="{{.Thumb}}" alt="PCoA Plot"></a></p>
    {{if .Legend}}
    <p><img src="{{.Legend}}" alt="PCoA Plot legend"></p>
    {{end}}
    <p><a href="{{.SVG}}">Interactive version</a> (hover over a point for its sample ID)</p>
    <table>
      <caption>{{.Title}}</caption>
      <thead>
        <tr><th>Series</th><th>Points</th></tr>
      </thead>
      <tbody>
      {{range .Series}}
        <tr><td>{{.Label}}</td><td class="n">{{len .Points}}</td></tr>
      {{end}}
      </tbody>
    </table>
  </body>
</html>
`

var htmlTemplate = template.Must(template.New("index").Parse(htmlIndex))

// index is the data of the report page.
type index struct {
	Title                    string
	Plot, Thumb, SVG, Legend string
	Series                   []*pcoa.Series
}

func writeIndex(w io.Writer, idx *index) error {
	return htmlTemplate.Execute(w, idx)
}
