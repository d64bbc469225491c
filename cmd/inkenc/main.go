// inkenc converts PNG, GIF, and BMP images into inkwell bitmap containers.
//
// Usage examples:
//
// # Single bitmap, run-length compressed
// ./inkenc -compress -o ball.inkb ball.png
//
// # Animation: every GIF frame becomes a table entry
// ./inkenc -o walk.inkt walk.gif
//
// # Table from numbered files walk-table-1.png, walk-table-2.png, ...
// ./inkenc -table -o walk.inkt walk.png
//
// # Render what the device would show next to the container
// ./inkenc -preview ball-preview.png -o ball.inkb ball.png
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/phanxgames/inkwell"
)

type options struct {
	table    bool
	compress bool
	version  int
	padding  int
	output   string
	preview  string
}

func main() {
	var opts options
	flag.BoolVar(&opts.table, "table", false, "Write a bitmap table (implied for GIF input)")
	flag.BoolVar(&opts.compress, "compress", false, "Run-length encode the planes (version 3 and later)")
	flag.IntVar(&opts.version, "version", 0, "Container version (0 = latest)")
	flag.IntVar(&opts.padding, "padding", 0, "Zero bytes written after the header (version 2 and later)")
	flag.StringVar(&opts.output, "o", "", "Output file (omit to derive from the input name, '-' for stdout)")
	flag.StringVar(&opts.preview, "preview", "", "Also write a PNG rendering of the result")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Usage: inkenc [options] <image>")
		fmt.Fprintln(os.Stderr, "\nOptions:")
		flag.PrintDefaults()
		os.Exit(1)
	}

	input := flag.Arg(0)
	if err := run(input, opts); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(input string, opts options) error {
	host := inkwell.NewMemoryHost(inkwell.MemoryHostConfig{FS: os.DirFS(filepath.Dir(input))})
	name := filepath.Base(input)

	bitmaps, release, err := load(host, name, opts.table || isGIF(name))
	if err != nil {
		return err
	}
	defer release()

	enc := inkwell.EncodeOptions{Version: opts.version, Compress: opts.compress, Padding: opts.padding}
	var out []byte
	if opts.table || isGIF(name) {
		out, err = inkwell.EncodeBitmapTable(bitmaps, enc)
	} else {
		out, err = inkwell.EncodeBitmap(bitmaps[0], enc)
	}
	if err != nil {
		return err
	}

	dest := opts.output
	if dest == "" {
		dest = defaultOutput(input, opts.table || isGIF(name))
	}
	if dest == "-" {
		_, err = os.Stdout.Write(out)
	} else {
		err = os.WriteFile(dest, out, 0o644)
	}
	if err != nil {
		return fmt.Errorf("write %s: %w", dest, err)
	}
	fmt.Fprintf(os.Stderr, "%s: %d bitmap(s), %d bytes\n", dest, len(bitmaps), len(out))

	if opts.preview != "" {
		return inkwell.WriteFramePNG(opts.preview, preview(bitmaps))
	}
	return nil
}

// load decodes name as a single bitmap or as a table and returns a function
// releasing whatever it allocated.
func load(host *inkwell.MemoryHost, name string, table bool) ([]*inkwell.Bitmap, func(), error) {
	if !table {
		b, err := inkwell.LoadBitmap(host, name)
		if err != nil {
			return nil, nil, err
		}
		return []*inkwell.Bitmap{b}, b.Free, nil
	}

	t, err := inkwell.LoadBitmapTable(host, name)
	if err != nil {
		return nil, nil, err
	}
	bitmaps := make([]*inkwell.Bitmap, t.Len())
	for i := range bitmaps {
		bitmaps[i] = t.Bitmap(i)
	}
	release := func() {
		for _, b := range bitmaps {
			b.Free()
		}
		t.Free()
	}
	return bitmaps, release, nil
}

// preview draws bitmaps side by side on a white frame, one pixel apart.
func preview(bitmaps []*inkwell.Bitmap) inkwell.Frame {
	w, h := 0, 1
	for _, b := range bitmaps {
		w += b.Width() + 1
		h = max(h, b.Height())
	}
	host := inkwell.NewMemoryHost(inkwell.MemoryHostConfig{Width: max(w-1, 1), Height: h})
	g := inkwell.NewGraphics(host)
	g.Clear(inkwell.ColorWhite)
	x := 0
	for _, b := range bitmaps {
		g.DrawBitmap(b, x, 0)
		x += b.Width() + 1
	}
	return host.Frame()
}

func isGIF(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".gif")
}

func defaultOutput(input string, table bool) string {
	ext := ".inkb"
	if table {
		ext = ".inkt"
	}
	return strings.TrimSuffix(input, filepath.Ext(input)) + ext
}
