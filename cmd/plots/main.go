// Command plots renders the simulator's standard result charts as
// high-resolution PNGs plus a CSV log: the built-in 10 mph demonstration
// run (or any SimulationInput JSON passed with -config) and the static
// thrust validation sweep against the published wind tunnel data.
package main

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"image/color"
	"log"
	"math"
	"os"
	"path/filepath"

	"github.com/davecheney/profile"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/montagdude/ddwfttw-vehicle/internal/airfoil"
	"github.com/montagdude/ddwfttw-vehicle/internal/engine"
	"github.com/montagdude/ddwfttw-vehicle/internal/integrator"
	"github.com/montagdude/ddwfttw-vehicle/internal/rotor"
	"github.com/montagdude/ddwfttw-vehicle/internal/vehicle"
)

func main() {
	configPath := flag.String("config", "", "SimulationInput JSON file (default: built-in 10 mph demo)")
	outDir := flag.String("outdir", filepath.Join("output", "plots"), "directory for charts and CSV")
	cpuProf := flag.Bool("profile", false, "write a CPU profile to the output directory")
	flag.Parse()

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		log.Fatalf("cannot create output dir: %v", err)
	}

	if *cpuProf {
		profConfig := profile.CPUProfile
		profConfig.ProfilePath = *outDir
		prof := profile.Start(profConfig)
		defer prof.Stop()
	}

	input := demoInput()
	if *configPath != "" {
		data, err := os.ReadFile(*configPath)
		if err != nil {
			log.Fatalf("cannot read config: %v", err)
		}
		input = engine.SimulationInput{}
		if err := json.Unmarshal(data, &input); err != nil {
			log.Fatalf("cannot parse config: %v", err)
		}
	}

	sim, err := engine.NewSim(input)
	if err != nil {
		log.Fatalf("cannot build simulation: %v", err)
	}
	log.Printf("running simulation %q...", input.Meta.SimulationID)
	simLog := sim.Run()
	log.Printf("simulation finished after %d steps", len(simLog.Output))

	if err := saveRunCharts(*outDir, input, simLog); err != nil {
		log.Fatalf("run charts failed: %v", err)
	}
	if err := saveRunCSV(filepath.Join(*outDir, "simulation_log.csv"), simLog); err != nil {
		log.Fatalf("CSV export failed: %v", err)
	}

	log.Printf("running static thrust validation sweep...")
	if err := saveValidationCharts(*outDir); err != nil {
		log.Fatalf("validation charts failed: %v", err)
	}
	log.Printf("done; output in %s", *outDir)
}

// demoInput is the built-in demonstration case: a 650 lb cart with a
// 17.5 ft two-bladed rotor in a 10 mph tailwind, imperial units
// throughout, ramping collective from flat to 9 degrees as the cart
// accelerates through wind speed.
func demoInput() engine.SimulationInput {
	wind := 10 * (5280.0 / 3600.0)
	speeds := []float64{0.5, 0.8, 1.0, 1.5, 2.0, 2.2, 2.5, 2.6}
	angles := []float64{0, 2, 4, 6, 8, 9, 9, 9}
	sched := make(vehicle.Schedule, len(speeds))
	for i := range speeds {
		sched[i] = vehicle.SchedulePoint{Speed: speeds[i] * wind, Angle: angles[i]}
	}
	return engine.SimulationInput{
		Meta: engine.SimulationMeta{
			SimulationID: "demo-10mph",
			RunTime:      600,
			TimeStep:     0.5,
			Integrator:   integrator.RK4MethodName,
		},
		Environment: vehicle.Environment{
			AirDensity: 0.0023768925503953276,
			Gravity:    32.174,
			WindSpeed:  wind,
		},
		Vehicle: engine.VehicleConfig{
			Params: vehicle.Params{
				Mass:              650.0 / 32.174,
				WheelRadius:       1.25,
				GearRatio:         1.5,
				GearEfficiency:    0.85,
				FrontalArea:       20,
				CDFront:           0.3,
				CDBack:            0.4,
				RollingResistance: 0.01,
			},
			Collective: sched,
			Rotor: &engine.RotorConfig{
				NumBlades: 2,
				Blade: rotor.Blade{
					Radial: []float64{1, 2.5, 3.5, 8.75},
					Chord:  []float64{0.2, 1.1, 1.2, 0.3},
					Twist:  []float64{26, 18, 16, 8},
				},
				Solver: rotor.Params{Stations: 25, Tolerance: 1e-8, MaxIters: 2000, Relaxation: 0.05},
				Polar:  airfoil.NACA6412(),
			},
		},
	}
}

// series is one named curve on a chart.
type series struct {
	name   string
	xs, ys []float64
	dashed bool
}

// saveRunCharts renders the time histories of one run: position, speed
// against the wind, collective, and the force breakdown, plus the blade
// geometry when the run has a rotor.
func saveRunCharts(outDir string, input engine.SimulationInput, simLog engine.SimulationLog) error {
	n := len(simLog.Output)
	if n == 0 {
		return errors.New("empty simulation log")
	}

	t := make([]float64, n)
	x := make([]float64, n)
	v := make([]float64, n)
	coll := make([]float64, n)
	thrust := make([]float64, n)
	aero := make([]float64, n)
	rotorDrag := make([]float64, n)
	rolling := make([]float64, n)
	net := make([]float64, n)
	for i, row := range simLog.Output {
		t[i] = row.Timestamp
		x[i] = row.Position
		v[i] = row.Speed
		coll[i] = row.Collective
		thrust[i] = row.Forces.RotorThrust
		aero[i] = row.Forces.AeroDrag
		rotorDrag[i] = row.Forces.RotorDrag
		rolling[i] = row.Forces.Rolling
		net[i] = row.Forces.Net
	}

	if err := saveLinePlot(outDir, "position.png", "Cart Position", "time (s)", "position (ft)", t, x); err != nil {
		return err
	}

	wind := input.Environment.WindSpeed
	speedSeries := []series{
		{name: "cart speed", xs: t, ys: v},
		{name: "wind speed", xs: []float64{t[0], t[n-1]}, ys: []float64{wind, wind}, dashed: true},
	}
	if err := saveMultiLinePlot(outDir, "speed.png", "Cart Speed vs Wind", "time (s)", "speed (ft/s)", speedSeries); err != nil {
		return err
	}

	if err := saveLinePlot(outDir, "collective.png", "Collective Pitch Schedule", "time (s)", "collective (deg)", t, coll); err != nil {
		return err
	}

	forceSeries := []series{
		{name: "rotor thrust", xs: t, ys: thrust},
		{name: "aero drag", xs: t, ys: aero},
		{name: "rotor drag", xs: t, ys: rotorDrag},
		{name: "rolling", xs: t, ys: rolling},
		{name: "net", xs: t, ys: net, dashed: true},
	}
	if err := saveMultiLinePlot(outDir, "forces.png", "Force Breakdown", "time (s)", "force (lbf)", forceSeries); err != nil {
		return err
	}

	if rc := input.Vehicle.Rotor; rc != nil {
		if err := saveLinePlot(outDir, "blade_chord.png", "Blade Planform", "radius (ft)", "chord (ft)", rc.Blade.Radial, rc.Blade.Chord); err != nil {
			return err
		}
		if err := saveLinePlot(outDir, "blade_twist.png", "Blade Twist", "radius (ft)", "twist (deg)", rc.Blade.Radial, rc.Blade.Twist); err != nil {
			return err
		}
	}
	return nil
}

// saveValidationCharts sweeps the five-bladed test propeller through the
// published collective range and charts the computed thrust and power
// coefficients against the wind tunnel measurements.
func saveValidationCharts(outDir string) error {
	tc := rotor.TN262Case()
	perf, err := rotor.Sweep(tc.Blade, tc.NumBlades, airfoil.NACA0015(), rotor.DefaultParams(),
		tc.AirDensity, tc.RPM, rotor.TN262Collective)
	if err != nil {
		return err
	}

	coll := make([]float64, len(perf))
	ct := make([]float64, len(perf))
	cp := make([]float64, len(perf))
	for i, p := range perf {
		coll[i] = p.Collective
		ct[i] = p.CT
		cp[i] = p.CP
	}

	if err := saveComparisonPlot(outDir, "thrust_coefficient.png", "Static Thrust Coefficient",
		"collective (deg)", "CT", coll, ct, rotor.TN262Collective, rotor.TN262ThrustCoeff); err != nil {
		return err
	}
	return saveComparisonPlot(outDir, "power_coefficient.png", "Static Power Coefficient",
		"collective (deg)", "CP", coll, cp, rotor.TN262Collective, rotor.TN262PowerCoeff)
}

func limitedTicker(maxLabels int, labelFmt string) plot.Ticker {
	if maxLabels < 2 {
		maxLabels = 2
	}
	return plot.TickerFunc(func(min, max float64) []plot.Tick {
		if math.IsNaN(min) || math.IsNaN(max) || math.IsInf(min, 0) || math.IsInf(max, 0) {
			return nil
		}
		if min == max {
			return []plot.Tick{{Value: min, Label: fmt.Sprintf(labelFmt, min)}}
		}
		step := (max - min) / float64(maxLabels-1)
		ticks := make([]plot.Tick, 0, maxLabels)
		for i := 0; i < maxLabels; i++ {
			v := min + float64(i)*step
			ticks = append(ticks, plot.Tick{Value: v, Label: fmt.Sprintf(labelFmt, v)})
		}
		return ticks
	})
}

func stylePlot(p *plot.Plot) {
	p.Title.TextStyle.Font.Size = vg.Points(22)
	p.Title.Padding = vg.Points(12)

	p.X.Label.TextStyle.Font.Size = vg.Points(18)
	p.Y.Label.TextStyle.Font.Size = vg.Points(18)
	p.X.Label.Padding = vg.Points(10)
	p.Y.Label.Padding = vg.Points(10)

	p.X.LineStyle.Width = vg.Points(2.2)
	p.Y.LineStyle.Width = vg.Points(2.2)
	p.X.Padding = vg.Points(20)
	p.Y.Padding = vg.Points(20)

	p.X.Tick.LineStyle.Width = vg.Points(2.0)
	p.Y.Tick.LineStyle.Width = vg.Points(2.0)
	p.X.Tick.Length = vg.Points(8)
	p.Y.Tick.Length = vg.Points(8)

	p.X.Tick.Label.Font.Size = vg.Points(14)
	p.Y.Tick.Label.Font.Size = vg.Points(14)

	p.X.Tick.Marker = limitedTicker(10, "%.1f")
	p.Y.Tick.Marker = limitedTicker(10, "%.1f")

	p.Legend.TextStyle.Font.Size = vg.Points(14)
}

func savePlotPNG(p *plot.Plot, widthIn, heightIn float64, filename string) error {
	if err := os.MkdirAll(filepath.Dir(filename), 0o755); err != nil {
		return fmt.Errorf("cannot create directory: %w", err)
	}
	w := vg.Length(widthIn) * vg.Inch
	h := vg.Length(heightIn) * vg.Inch

	c := vgimg.NewWith(
		vgimg.UseWH(w, h),
		vgimg.UseDPI(300),
	)
	dc := draw.New(c)
	p.Draw(dc)

	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("cannot create png: %w", err)
	}
	defer f.Close()

	bw := bufio.NewWriter(f)
	defer bw.Flush()

	pngc := vgimg.PngCanvas{Canvas: c}
	if _, err := pngc.WriteTo(bw); err != nil {
		return fmt.Errorf("cannot write png: %w", err)
	}
	return nil
}

func xyPoints(xs, ys []float64) plotter.XYs {
	pts := make(plotter.XYs, len(xs))
	for i := range xs {
		pts[i].X = xs[i]
		pts[i].Y = ys[i]
	}
	return pts
}

func saveLinePlot(outDir, filename, title, xlabel, ylabel string, xs, ys []float64) error {
	if len(xs) != len(ys) || len(xs) == 0 {
		return fmt.Errorf("plot data invalid for %s", filename)
	}
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = xlabel
	p.Y.Label.Text = ylabel
	stylePlot(p)

	line, err := plotter.NewLine(xyPoints(xs, ys))
	if err != nil {
		return err
	}
	line.LineStyle.Width = vg.Points(3.0)
	p.Add(line)

	return savePlotPNG(p, 8.0, 6.0, filepath.Join(outDir, filename))
}

var linePalette = []color.RGBA{
	{R: 40, G: 100, B: 220, A: 255},
	{R: 220, G: 60, B: 50, A: 255},
	{R: 30, G: 160, B: 90, A: 255},
	{R: 240, G: 160, B: 30, A: 255},
	{R: 120, G: 80, B: 200, A: 255},
}

func saveMultiLinePlot(outDir, filename, title, xlabel, ylabel string, ss []series) error {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = xlabel
	p.Y.Label.Text = ylabel
	stylePlot(p)
	p.Legend.Top = true
	p.Legend.Left = true

	for i, s := range ss {
		if len(s.xs) != len(s.ys) || len(s.xs) == 0 {
			return fmt.Errorf("plot data invalid for %s series %q", filename, s.name)
		}
		line, err := plotter.NewLine(xyPoints(s.xs, s.ys))
		if err != nil {
			return err
		}
		line.LineStyle.Width = vg.Points(3.0)
		line.LineStyle.Color = linePalette[i%len(linePalette)]
		if s.dashed {
			line.LineStyle.Dashes = []vg.Length{vg.Points(6), vg.Points(4)}
		}
		p.Add(line)
		p.Legend.Add(s.name, line)
	}

	return savePlotPNG(p, 8.0, 6.0, filepath.Join(outDir, filename))
}

// saveComparisonPlot overlays a computed curve on reference data points.
func saveComparisonPlot(outDir, filename, title, xlabel, ylabel string, xs, ys, refX, refY []float64) error {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = xlabel
	p.Y.Label.Text = ylabel
	stylePlot(p)
	p.Y.Tick.Marker = limitedTicker(10, "%.4f")
	p.Legend.Top = true
	p.Legend.Left = true

	line, err := plotter.NewLine(xyPoints(xs, ys))
	if err != nil {
		return err
	}
	line.LineStyle.Width = vg.Points(3.0)
	line.LineStyle.Color = linePalette[0]

	scatter, err := plotter.NewScatter(xyPoints(refX, refY))
	if err != nil {
		return err
	}
	scatter.GlyphStyle.Shape = draw.CircleGlyph{}
	scatter.GlyphStyle.Radius = vg.Points(5)
	scatter.GlyphStyle.Color = linePalette[1]

	p.Add(line, scatter)
	p.Legend.Add("calculated", line)
	p.Legend.Add("wind tunnel", scatter)

	return savePlotPNG(p, 8.0, 6.0, filepath.Join(outDir, filename))
}

func saveRunCSV(filename string, simLog engine.SimulationLog) error {
	if len(simLog.Output) == 0 {
		return errors.New("CSV: empty simulation log")
	}
	if err := os.MkdirAll(filepath.Dir(filename), 0o755); err != nil {
		return fmt.Errorf("CSV: cannot create directory: %w", err)
	}

	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("CSV: cannot open %s: %w", filename, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	header := []string{"t", "x", "v", "collective", "rotor_thrust", "aero_drag", "rotor_drag", "rolling", "net"}
	if err := w.Write(header); err != nil {
		return fmt.Errorf("CSV: cannot write header: %w", err)
	}
	for _, row := range simLog.Output {
		vals := []float64{
			row.Timestamp, row.Position, row.Speed, row.Collective,
			row.Forces.RotorThrust, row.Forces.AeroDrag, row.Forces.RotorDrag,
			row.Forces.Rolling, row.Forces.Net,
		}
		rec := make([]string, len(vals))
		for i, v := range vals {
			rec[i] = fmt.Sprintf("%.10g", v)
		}
		if err := w.Write(rec); err != nil {
			return fmt.Errorf("CSV: cannot write row: %w", err)
		}
	}
	return nil
}
