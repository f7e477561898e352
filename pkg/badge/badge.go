// Package badge renders the repository status badge. Rendering is total:
// every input maps to a well-formed SVG, the data layer's problems never
// reach the image.
package badge

import "fmt"

const (
	statusNoData = "NO DATA"
	statusSecure = "SECURE"

	colorNoData  = "#4b5563"
	colorSecure  = "#39ff14"
	colorThreats = "#ff003c"
)

const badgeTemplate = `<svg xmlns="http://www.w3.org/2000/svg" width="140" height="20">
  <linearGradient id="g" x2="0" y2="100%%">
    <stop offset="0" stop-color="#0a0a0a" stop-opacity=".1"/>
    <stop offset="1" stop-opacity=".1"/>
  </linearGradient>
  <clipPath id="r">
    <rect width="140" height="20" rx="0" fill="#fff"/>
  </clipPath>
  <g clip-path="url(#r)">
    <rect width="70" height="20" fill="#050505"/>
    <rect x="70" width="70" height="20" fill="%s"/>
    <rect width="140" height="20" fill="url(#g)"/>
  </g>
  <g fill="#fff" text-anchor="middle" font-family="JetBrains Mono,monospace" font-size="10">
    <text x="35" y="14" fill="#00f0ff" font-weight="bold">SHIPSAFE</text>
    <text x="105" y="14" fill="#000" font-weight="bold">%s</text>
  </g>
  <rect width="140" height="20" fill="none" stroke="#1f2937" stroke-width="1"/>
</svg>`

// NoData renders the badge shown when no scan record exists (or the record
// could not be read).
func NoData() []byte {
	return render(statusNoData, colorNoData)
}

// ForIssueCount renders SECURE for zero issues and "<N> THREATS" otherwise.
func ForIssueCount(count int) []byte {
	if count <= 0 {
		return render(statusSecure, colorSecure)
	}
	return render(fmt.Sprintf("%d THREATS", count), colorThreats)
}

func render(status, color string) []byte {
	return []byte(fmt.Sprintf(badgeTemplate, color, status))
}
