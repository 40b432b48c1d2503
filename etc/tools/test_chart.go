package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"elpris/internal/clients_api/tibber"
	"elpris/internal/features/pricechart"
)

// go run etc/tools/test_chart.go
// renders a recorded API response to etc/charts/elpris.png without a token
func main() {
	input := flag.String("input", "internal/clients_api/tibber/testdata/price_info_tomorrow.json", "recorded price_info response")
	output := flag.String("output", "etc/charts/elpris.png", "PNG output path")
	html := flag.String("html", "etc/charts/elpris.html", "HTML output path, empty to skip")
	flag.Parse()

	fmt.Println("Generating test chart...")

	body, err := os.ReadFile(*input)
	if err != nil {
		fmt.Printf("Error reading %s: %v\n", *input, err)
		os.Exit(1)
	}

	loc, err := time.LoadLocation("Europe/Stockholm")
	if err != nil {
		loc = time.Local
	}

	info, err := tibber.ParsePriceInfo(body, loc)
	if err != nil {
		fmt.Printf("Error parsing response: %v\n", err)
		os.Exit(1)
	}

	renderer, err := pricechart.NewRenderer(pricechart.Options{
		OutputPath: *output,
		HTMLPath:   *html,
		Location:   loc,
	})
	if err != nil {
		fmt.Printf("Error creating renderer: %v\n", err)
		os.Exit(1)
	}

	state := pricechart.NewRenderState()
	state.CycleCount = 1
	result, err := renderer.Render(info, state)
	if err != nil {
		fmt.Printf("Error generating chart: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Chart generated successfully: %s (y max %s)\n", result.Path, result.YUpper)
	fmt.Println("Open the file to see the result!")
}
