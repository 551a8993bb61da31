package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/corestream/ytv1/client"
)

func main() {
	var (
		videoID = flag.String("v", "", "video id or watch URL")
		proxy   = flag.String("proxy", "", "proxy URL")
		hlsOnly = flag.Bool("hls", false, "print the live HLS manifest URL only")
	)
	flag.Parse()

	if *videoID == "" {
		fmt.Println("Usage: ytv1 -v <video_id> [-hls] [-proxy <url>]")
		flag.PrintDefaults()
		os.Exit(1)
	}

	c := client.New(client.Config{
		HTTPClient: http.DefaultClient,
		ProxyURL:   *proxy,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if *hlsOnly {
		u, err := c.GetHLSURL(ctx, *videoID)
		if err != nil {
			log.Fatalf("resolving hls url: %v", err)
		}
		fmt.Println(u)
		return
	}

	manifest, err := c.GetManifest(ctx, *videoID)
	if err != nil {
		log.Fatalf("resolving manifest: %v", err)
	}

	fmt.Printf("found %d streams for %s:\n", manifest.Len(), *videoID)
	for _, info := range manifest.Entries() {
		fmt.Printf("[%d] %s %dx%d %d kbps - %s/%s (%s)\n",
			info.Itag, info.QualityLabel, info.Width, info.Height, info.Bitrate/1000,
			info.VideoCodec, info.AudioCodec, info.Kind)
	}
}
