package main

import (
	"bytes"
	"fmt"
	"image/color"
	"io"
	"log"
	"os"
	"strings"
	"syscall"

	"github.com/unixdj/dynqr"
	"github.com/unixdj/dynqr/coding"

	"github.com/mattn/go-isatty"
	"github.com/pborman/getopt/v2"
)

var g = struct {
	scale   int            // scale
	border  int            // quiet zone
	rev     bool           // reverse colours
	rounded bool           // rounded modules
	fn      string         // filename
	logo    string         // logo filename
	caption string         // caption
	lev     qr.Level       // QR correction level
	ver     coding.Version // QR version
	format  int            // output file format
	bg, fg  color.RGBA     // colour
	latin1  bool           // Latin-1 byte mode
	upper   bool           // uppercase
}{
	border: qr.DefaultBorder,
	bg:     qr.White,
	fg:     qr.Black,
}

func printUsage(w io.Writer) {
	cl := getopt.CommandLine
	prog := cl.Program()
	ul := make([]string, 1, 4)
	ul[0] = cl.UsageLine() + " [string ...]"
	ml := max(70-len("Usage: ")-1-len(prog), 0)
	for i := 0; len(ul[i]) > ml; i++ {
		s := ul[i]
		n := ml - 1
		for n > 0 && (s[n] != ' ' || s[n+1] != '[') {
			n--
		}
		ul = append(ul, s[n+1:])
		ul[i] = s[:max(n, 0)]
		ml = 60
	}
	fmt.Fprint(w, "QR code generator\nUsage: ", prog, " ",
		strings.Join(ul, "\n          "), `
If no string is given, data is read from standard input and the final
newline is stripped.  Data is encoded in byte mode as given, or as
Latin-1 with -1.

`)
	var b bytes.Buffer
	cl.PrintOptions(&b)
	w.Write(b.Bytes())
}

type opt func()

func (opt) String() string                    { return "" }
func (o opt) Set(string, getopt.Option) error { o(); return nil }

func usage() {
	printUsage(os.Stderr)
	os.Exit(2)
}

func help() {
	printUsage(os.Stdout)
	os.Exit(0)
}

func version() {
	fmt.Println(`qr version 0.9.0
Copyright (c) 2011 The Go Authors
Copyright (c) 2025 Vadim Vygonets`)
	os.Exit(0)
}

// rgb is a colour flag value.
type rgb struct{ c *color.RGBA }

func (c rgb) String() string { return qr.FormatColor(*c.c) }

func (c rgb) Set(s string, _ getopt.Option) error {
	v, err := qr.ParseColor(s)
	if err != nil {
		return fmt.Errorf("%q: bad colour spec", s)
	}
	*c.c = v
	return nil
}

var formats = []string{
	"png", "pngi", "pbm", "pbmi", "eps", "epsi",
	"utf8", "utf8i", "ascii", "asciii",
}

var encoders = [...]func(*qr.Code, io.Writer) error{
	(*qr.Code).EncodePNG,
	(*qr.Code).EncodePBM,
	eps,
	func(c *qr.Code, w io.Writer) error {
		_, err := io.WriteString(w, c.String())
		return err
	},
	func(c *qr.Code, w io.Writer) error {
		_, err := io.WriteString(w, c.ASCII())
		return err
	},
}

func parseFlags() {
	getopt.SetUsage(usage)
	getopt.Flag(opt(help), 'h', "show this help").SetFlag()
	getopt.Flag(opt(version), 'V', "print version and copyright").SetFlag()
	getopt.FlagLong(rgb{&g.bg}, "background", 'B', `background colour; see -F`,
		"RGB")
	getopt.FlagLong(rgb{&g.fg}, "foreground", 'F', `foreground colour `+
		`as 3 or 6 hex digits, optionally preceded by "#"; `+
		`only for types png[i] and eps[i]`, "RGB")
	getopt.Flag(&g.latin1, '1', "convert data to Latin-1")
	getopt.Flag(&g.upper, 'i', `ignore case, convert input to uppercase`)
	getopt.Flag(&g.rounded, 'R', "draw rounded modules; only for type png[i]")
	getopt.Flag(&g.logo, 'L', "draw the image in file in the centre; "+
		"only for type png[i]", "file")
	getopt.Flag(&g.caption, 'c', "draw text below the code; "+
		"only for type png[i]", "text")
	getopt.Flag(&g.border, 'm', `quiet zone modules`, "margin")
	fno := getopt.Flag(&g.fn, 'o', `output file, or "-" for `+
		`standard output`, "file")
	ver := getopt.Unsigned('v', 0, &getopt.UnsignedLimit{Base: 0, Bits: 8, Min: 0, Max: 40},
		"QR code version; 0 picks the smallest that fits", "ver")
	lev := getopt.Enum('l',
		[]string{"l", "m", "q", "h", "L", "M", "Q", "H"}, "h",
		"error correction level, lowest to highest", "l|m|q|h")
	scale := getopt.Unsigned('s', qr.DefaultScale,
		&(getopt.UnsignedLimit{Base: 0, Bits: 16, Min: 1, Max: qr.MaxScale}),
		`image pixels (type eps[i]: points) per QR module ("pixel"); `+
			`ignored for types utf8[i] and ascii[i]`, "scale")
	ff := getopt.Enum('t', formats, "", `output format, one of: `+
		strings.Join(formats, ", ")+
		`; types with "i" appended have colours inverted; `+
		`if no -o is given and standard output is a TTY, `+
		`default is utf8, otherwise png`, "type")

	getopt.Parse()
	g.scale = int(*scale)
	g.ver = coding.Version(*ver)
	var err error
	if g.lev, err = qr.ParseLevel(*lev); err != nil {
		usage()
	}
	if *ff == "" {
		if !fno.Seen() && isatty.IsTerminal(uintptr(syscall.Stdout)) {
			*ff = "utf8"
		} else {
			*ff = "png"
		}
	}
	for i, v := range formats {
		if *ff == v {
			g.format = i >> 1
			g.rev = i&1 != 0
			break
		}
	}
	if g.fn == "-" {
		g.fn = ""
	}
}

func main() {
	log.SetFlags(0)
	parseFlags()

	var s string
	if args := getopt.Args(); len(args) != 0 {
		s = strings.Join(args, " ")
	} else {
		var b strings.Builder
		if _, err := io.Copy(&b, os.Stdin); err != nil {
			log.Fatalln(err)
		}
		s, _ = strings.CutSuffix(
			strings.ReplaceAll(b.String(), "\r\n", "\n"), "\n")
	}
	if g.upper {
		s = strings.ToUpper(s)
	}

	o := qr.Options{
		Level:   g.lev,
		Version: g.ver,
		Style: qr.Style{
			Scale:      g.scale,
			Border:     g.border,
			Foreground: g.fg,
			Background: g.bg,
		},
		LogoOptions: qr.LogoOptions{Edge: qr.DefaultLogoEdge},
		Caption:     g.caption,
		Latin1:      g.latin1,
	}
	if g.rounded {
		o.Shape = qr.Rounded
	}
	if g.logo != "" {
		var err error
		if o.Logo, err = os.ReadFile(g.logo); err != nil {
			log.Fatalln(err)
		}
	}
	c, err := qr.Encode(s, o)
	if err != nil {
		log.Fatalln(err)
	}
	write(c)
}

func write(c *qr.Code) {
	open := g.fn != ""
	var w = os.Stdout
	if open {
		var err error
		if w, err = os.OpenFile(g.fn, os.O_WRONLY|os.O_CREATE|os.O_TRUNC,
			0666); err != nil {
			log.Fatalln(err)
		}
	}
	c.Reverse = g.rev
	err := encoders[g.format](c, w)
	if open && err == nil {
		err = w.Close()
	}
	if err != nil {
		log.Fatalln(err)
	}
}

func eps(c *qr.Code, w io.Writer) error {
	const midx, midy = 306, 396
	siz := c.Size
	scale := c.Scale
	bord := c.Border
	xorig := (midx*2 - (siz+2*bord)*scale) / 2
	yorig := (midy*2 - (siz+2*bord)*scale) / 2
	bw := errWriter{w: w}
	bw.printf(`%%!PS-Adobe-2.0 EPSF-2.0
%%%%Creator: QR https://github.com/unixdj/dynqr
%%%%Title: QR Code
%%%%BoundingBox: %d %d %d %d
%%%%EndComments
%%%%EndProlog
<< >> begin
gsave
%g %g translate
%d dup neg scale
/row 0 def
/p { 0 rmoveto 0 rlineto } def
/r { 0 row 1 add dup /row exch def moveto } def
`,
		xorig-1, yorig-1, midx*2-xorig, midy*2-yorig,
		midx-float64(siz*scale)/2, midy+float64((siz-1)*scale)/2-1,
		scale)
	bg, fg := c.Background, c.Foreground
	if c.Reverse {
		bg, fg = fg, bg
	}
	if bg != qr.White || fg != qr.Black {
		bw.printf(`gsave
newpath %d %d moveto
%d dup neg scale
%.3g %.3g %.3g setrgbcolor
1 0 rlineto stroke
grestore
%.3g %.3g %.3g setrgbcolor
`,
			-bord, siz/2, siz+2*bord,
			float64(bg.R)/0xff, float64(bg.G)/0xff,
			float64(bg.B)/0xff, float64(fg.R)/0xff,
			float64(fg.G)/0xff, float64(fg.B)/0xff)
	}
	bw.printf("newpath 0 0 moveto\n")
	for y := 0; y < siz; y++ {
		for x := 0; x < siz; {
			s := x
			for x < siz && !c.Black(x, y) {
				x++
			}
			if x == siz {
				break
			}
			b := x
			for x < siz && c.Black(x, y) {
				x++
			}
			bw.printf("%d %d p ", x-b, b-s)
		}
		bw.printf("r\n")
	}
	bw.printf("stroke grestore\nend\n%%%%Trailer\n")
	return bw.err
}

// errWriter keeps the first write error.
type errWriter struct {
	w   io.Writer
	err error
}

func (b *errWriter) printf(format string, a ...any) {
	if b.err == nil {
		_, b.err = fmt.Fprintf(b.w, format, a...)
	}
}
