// Package plot renders dashboard charts with go-chart.
//
// [BoxPlot] draws one box per group, with whiskers at 1.5 IQR and optionally
// every individual point. [TopBar] draws the mean of the top groups as a bar
// chart. Both write SVG or PNG.
package plot
