package main

import (
	"fmt"
	"image"
	"image/gif"
	"image/png"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/gift"
	"github.com/urfave/cli/v2"
	"github.com/zakski/rotom4j-sub002/nitro"
)

func init() {
	cli.VersionFlag = &cli.BoolFlag{
		Name:    "version",
		Aliases: []string{"V"},
		Usage:   "print the version",
	}
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	app := cli.NewApp()

	app.Name = "nitrogfx"
	app.Usage = "Nintendo DS 2D graphics resource utility"
	app.Version = "1.0.0"

	app.Flags = []cli.Flag{
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "increase verbosity",
		},
	}

	renderFlags := []cli.Flag{
		&cli.StringFlag{
			Name:    "out",
			Aliases: []string{"o"},
			Value:   "-",
			Usage:   "output file, - for standard output",
		},
		&cli.StringFlag{
			Name:    "palette",
			EnvVars: []string{"NITRO_PALETTE"},
			Usage:   "NCLR to render with instead of the companion palette",
		},
		&cli.BoolFlag{
			Name:    "opaque",
			EnvVars: []string{"NITRO_OPAQUE"},
			Usage:   "draw color 0 instead of leaving it transparent",
		},
		&cli.StringFlag{
			Name:    "background",
			EnvVars: []string{"NITRO_BACKGROUND"},
			Value:   "transparent",
			Usage:   "fill empty plane pixels: transparent or color0",
		},
		&cli.BoolFlag{
			Name:  "bounds",
			Usage: "outline cell bounding rectangles",
		},
		&cli.IntFlag{
			Name:  "scale",
			Value: 1,
			Usage: "enlarge the output by an integer factor",
		},
		&cli.BoolFlag{
			Name:  "smooth",
			Usage: "enlarge with scale2x instead of repeating pixels",
		},
	}

	app.Commands = []*cli.Command{
		{
			Name:      "info",
			Usage:     "Describe a resource",
			ArgsUsage: "FILE",
			Action: func(c *cli.Context) error {
				if c.NArg() < 1 {
					cli.ShowCommandHelpAndExit(c, c.Command.Name, 1)
				}
				res, err := load(c, c.Args().First())
				if err != nil {
					return cli.Exit(err, 1)
				}
				describe(c.App.Writer, res)
				return nil
			},
		},
		{
			Name:      "palette",
			Usage:     "Render a palette as a grid of swatches",
			ArgsUsage: "FILE",
			Flags:     renderFlags,
			Action: func(c *cli.Context) error {
				return renderAction(c, nitro.KindPalette, func(res nitro.Resource, ctx nitro.RenderContext) (image.Image, error) {
					return res.(*nitro.NCLR).Image(ctx), nil
				})
			},
		},
		{
			Name:      "tiles",
			Usage:     "Render a tile bank",
			ArgsUsage: "FILE",
			Flags: append([]cli.Flag{
				&cli.StringFlag{
					Name:  "order",
					Usage: "tile order: horizontal or lineal (default: as stored)",
				},
			}, renderFlags...),
			Action: func(c *cli.Context) error {
				return renderAction(c, nitro.KindGraphic, func(res nitro.Resource, ctx nitro.RenderContext) (image.Image, error) {
					g := res.(*nitro.NCGR)
					switch strings.ToLower(c.String("order")) {
					case "":
						return g.Image(ctx), nil
					case "horizontal":
						return g.ImageOrder(ctx, nitro.Horizontal), nil
					case "lineal":
						return g.ImageOrder(ctx, nitro.Lineal), nil
					}
					return nil, fmt.Errorf("unknown tile order %q", c.String("order"))
				})
			},
		},
		{
			Name:      "cell",
			Usage:     "Composite a cell, or every cell side by side",
			ArgsUsage: "FILE",
			Flags: append([]cli.Flag{
				&cli.IntFlag{
					Name:  "index",
					Value: -1,
					Usage: "cell to composite onto the full plane",
				},
			}, renderFlags...),
			Action: func(c *cli.Context) error {
				return renderAction(c, nitro.KindCells, func(res nitro.Resource, ctx nitro.RenderContext) (image.Image, error) {
					ncer := res.(*nitro.NCER)
					if ncer.Graphic == nil {
						return nil, fmt.Errorf("no tile bank found for %s", c.Args().First())
					}
					i := c.Int("index")
					if i < 0 {
						return ncer.Image(ctx), nil
					}
					return ncer.Composite(i, ctx, nitro.CompositeParams{Origin: nitro.CenterOrigin}), nil
				})
			},
		},
		{
			Name:      "anim",
			Usage:     "Render an animation sequence as a GIF, or one frame as a PNG",
			ArgsUsage: "FILE",
			Flags: append([]cli.Flag{
				&cli.IntFlag{
					Name:  "seq",
					Usage: "sequence to render",
				},
				&cli.IntFlag{
					Name:  "tick",
					Value: -1,
					Usage: "render the single frame shown after this many ticks",
				},
			}, renderFlags...),
			Action: animAction,
		},
		{
			Name:      "narc",
			Usage:     "List or extract the members of an archive",
			ArgsUsage: "ARCHIVE",
			Flags: []cli.Flag{
				&cli.IntFlag{
					Name:  "extract",
					Value: -1,
					Usage: "write member N to --out instead of listing",
				},
				&cli.BoolFlag{
					Name:  "raw",
					Usage: "extract without decompressing",
				},
				&cli.StringFlag{
					Name:    "out",
					Aliases: []string{"o"},
					Value:   "-",
					Usage:   "output file, - for standard output",
				},
			},
			Action: narcAction,
		},
	}

	return app
}

func newLogger(c *cli.Context) *log.Logger {
	logger := log.New(io.Discard, "", 0)
	if c.Bool("verbose") {
		logger.SetOutput(os.Stderr)
	}
	return logger
}

func parseBackground(s string) (nitro.Background, error) {
	switch strings.ToLower(s) {
	case "", "transparent":
		return nitro.BackgroundTransparent, nil
	case "color0":
		return nitro.BackgroundColor0, nil
	}
	return 0, fmt.Errorf("unknown background %q", s)
}

func renderContext(c *cli.Context) (nitro.RenderContext, error) {
	bg, err := parseBackground(c.String("background"))
	if err != nil {
		return nitro.RenderContext{}, err
	}
	return nitro.RenderContext{
		Opaque:     c.Bool("opaque"),
		Background: bg,
		ShowBounds: c.Bool("bounds"),
		Logger:     newLogger(c),
	}, nil
}

// load decodes FILE and its companions. Archive members are named
// ARCHIVE.narc:N.EXT, where N is the member number or name.
func load(c *cli.Context, name string) (nitro.Resource, error) {
	d := &nitro.Decoder{Logger: newLogger(c)}
	if archive, member, ok := strings.Cut(name, ":"); ok && strings.EqualFold(filepath.Ext(archive), ".narc") {
		narc, err := openNARC(archive)
		if err != nil {
			return nil, err
		}
		d.Resolver = nitro.NARCResolver{Archive: narc}
		return d.Load(member)
	}
	d.Resolver = nitro.DirResolver{FS: os.DirFS(filepath.Dir(name))}
	return d.Load(filepath.Base(name))
}

func openNARC(name string) (*nitro.NARC, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return nitro.ReadNARC(f)
}

func loadPalette(c *cli.Context, res nitro.Resource) error {
	name := c.String("palette")
	if name == "" {
		return nil
	}
	u, ok := res.(nitro.PaletteUser)
	if !ok {
		return nil
	}
	p, err := load(c, name)
	if err != nil {
		return err
	}
	pal, ok := p.(*nitro.NCLR)
	if !ok {
		return fmt.Errorf("%s: not a palette", name)
	}
	u.SetPalette(pal)
	return nil
}

func renderAction(c *cli.Context, want nitro.Kind, render func(nitro.Resource, nitro.RenderContext) (image.Image, error)) error {
	if c.NArg() < 1 {
		cli.ShowCommandHelpAndExit(c, c.Command.Name, 1)
	}
	ctx, err := renderContext(c)
	if err != nil {
		return cli.Exit(err, 1)
	}
	res, err := load(c, c.Args().First())
	if err != nil {
		return cli.Exit(err, 1)
	}
	if res.Kind() != want {
		return cli.Exit(fmt.Sprintf("%s: expected %v, got %v", c.Args().First(), want, res.Kind()), 1)
	}
	if err := loadPalette(c, res); err != nil {
		return cli.Exit(err, 1)
	}
	m, err := render(res, ctx)
	if err != nil {
		return cli.Exit(err, 1)
	}
	return writeOutput(c, func(w io.Writer) error {
		return png.Encode(w, enlarge(c, m))
	})
}

func animAction(c *cli.Context) error {
	if c.NArg() < 1 {
		cli.ShowCommandHelpAndExit(c, c.Command.Name, 1)
	}
	ctx, err := renderContext(c)
	if err != nil {
		return cli.Exit(err, 1)
	}
	res, err := load(c, c.Args().First())
	if err != nil {
		return cli.Exit(err, 1)
	}
	nanr, ok := res.(*nitro.NANR)
	if !ok {
		return cli.Exit(fmt.Sprintf("%s: expected NANR, got %v", c.Args().First(), res.Kind()), 1)
	}
	if nanr.Cells == nil {
		return cli.Exit(fmt.Sprintf("no cell bank found for %s", c.Args().First()), 1)
	}
	if err := loadPalette(c, nanr.Cells); err != nil {
		return cli.Exit(err, 1)
	}
	a := nitro.NewAnimation(nanr, ctx)
	if t := c.Int("tick"); t >= 0 {
		m := a.RenderFrame(c.Int("seq"), t)
		return writeOutput(c, func(w io.Writer) error {
			return png.Encode(w, enlarge(c, m))
		})
	}
	g, err := a.GIF(c.Int("seq"))
	if err != nil {
		return cli.Exit(err, 1)
	}
	return writeOutput(c, func(w io.Writer) error {
		return gif.EncodeAll(w, g)
	})
}

func narcAction(c *cli.Context) error {
	if c.NArg() < 1 {
		cli.ShowCommandHelpAndExit(c, c.Command.Name, 1)
	}
	narc, err := openNARC(c.Args().First())
	if err != nil {
		return cli.Exit(err, 1)
	}
	if n := c.Int("extract"); n >= 0 {
		open := narc.Open
		if c.Bool("raw") {
			open = narc.OpenRaw
		}
		b, err := open(n)
		if err != nil {
			return cli.Exit(err, 1)
		}
		return writeOutput(c, func(w io.Writer) error {
			_, err := w.Write(b)
			return err
		})
	}
	w := c.App.Writer
	for i := 0; i < narc.FileCount(); i++ {
		raw, err := narc.OpenRaw(i)
		if err != nil {
			fmt.Fprintf(w, "%4d  %v\n", i, err)
			continue
		}
		kind := nitro.KindOf(raw)
		if b, err := narc.Open(i); err == nil {
			kind = nitro.KindOf(b)
		}
		fmt.Fprintf(w, "%4d  %8d  %-7v %s\n", i, len(raw), kind, narc.Name(i))
	}
	return nil
}

// enlarge applies --smooth and --scale.
func enlarge(c *cli.Context, m image.Image) image.Image {
	if c.Bool("smooth") {
		m = nitro.Scale2x(m)
	}
	n := c.Int("scale")
	if n <= 1 {
		return m
	}
	r := m.Bounds()
	g := gift.New(gift.Resize(r.Dx()*n, r.Dy()*n, gift.NearestNeighborResampling))
	dst := image.NewNRGBA(g.Bounds(r))
	g.Draw(dst, m)
	return dst
}

func writeOutput(c *cli.Context, write func(io.Writer) error) error {
	name := c.String("out")
	if name == "-" || name == "" {
		if err := write(c.App.Writer); err != nil {
			return cli.Exit(err, 1)
		}
		return nil
	}
	f, err := os.Create(name)
	if err != nil {
		return cli.Exit(err, 1)
	}
	if err := write(f); err != nil {
		f.Close()
		return cli.Exit(err, 1)
	}
	if err := f.Close(); err != nil {
		return cli.Exit(err, 1)
	}
	return nil
}

func describe(w io.Writer, res nitro.Resource) {
	h := res.Header()
	fmt.Fprintf(w, "%v: %v\n", res.Kind(), h)
	switch res := res.(type) {
	case *nitro.NCLR:
		fmt.Fprintf(w, "colors: %d at %dbpp\n", res.Len(), res.BitDepth)
		fmt.Fprintf(w, "sub-palettes: %d\n", len(res.Palettes()))
		if res.IsIR() {
			fmt.Fprintln(w, "infrared variant")
		}
	case *nitro.NCGR:
		fmt.Fprintf(w, "tiles: %d at %dbpp, %dx%d tiles\n", res.Len(), res.Depth, res.Width, res.Height)
		fmt.Fprintf(w, "order: %v, mapping: %v\n", res.Order, res.Mapping)
		fmt.Fprintf(w, "palette: %v\n", res.Palette != nil)
	case *nitro.NCER:
		fmt.Fprintf(w, "cells: %d, mapping: %v, bank type: %d\n", res.Len(), res.Mapping, res.BankType)
		if res.Partitions != nil {
			fmt.Fprintf(w, "VRAM transfers: largest %d bytes\n", res.MaxPartition)
		}
		for i := range res.Cells {
			cell := &res.Cells[i]
			fmt.Fprintf(w, "  %3d: %d objects, extent %v\n", i, len(cell.OAMs), cell.Extent())
		}
	case *nitro.NANR:
		fmt.Fprintf(w, "sequences: %d\n", res.Len())
		for i, s := range res.Sequences {
			fmt.Fprintf(w, "  %3d: %d frames, %d ticks, %v\n", i, len(s.Frames), s.Duration(), s.Mode)
		}
	}
}
