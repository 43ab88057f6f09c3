package engine_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/go-nbody/galaxysim/internal/body"
	"github.com/go-nbody/galaxysim/internal/engine"
)

var _ = Describe("Two-body circular orbit", func() {
	It("returns close to its starting positions after one period with bounded energy drift", func() {
		speed := math.Sqrt(100.0 / 4)
		bodies := []body.Body{
			{X: 1, Y: 0, Mass: 1, Index: 0, VY: speed},
			{X: -1, Y: 0, Mass: 1, Index: 1, VY: -speed},
		}

		cfg := engine.DefaultConfig()
		cfg.SectorExponent = 0
		cfg.Iterations = 628
		cfg.Force.Delta = 0.01

		e, err := engine.NewWithBodies(cfg, bodies)
		Expect(err).NotTo(HaveOccurred())

		startEnergy := engine.TotalEnergy(e.Bodies(), cfg.Force.G)

		Expect(e.Run()).To(Succeed())

		final := e.Bodies().Bodies
		Expect(math.Hypot(final[0].X-1, final[0].Y-0)).To(BeNumerically("<", 0.05))
		Expect(math.Hypot(final[1].X+1, final[1].Y-0)).To(BeNumerically("<", 0.05))

		endEnergy := engine.TotalEnergy(e.Bodies(), cfg.Force.G)
		drift := math.Abs(endEnergy-startEnergy) / math.Abs(startEnergy)
		Expect(drift).To(BeNumerically("<", 0.02))
	})
})

var _ = Describe("Single-body drift", func() {
	It("advances position by exactly v*delta per step with unchanged velocity", func() {
		bodies := []body.Body{{X: 0, Y: 0, VX: 1, VY: 0, Mass: 1, Index: 0}}

		cfg := engine.DefaultConfig()
		cfg.SectorExponent = 0
		cfg.Iterations = 50

		e, err := engine.NewWithBodies(cfg, bodies)
		Expect(err).NotTo(HaveOccurred())
		Expect(e.Run()).To(Succeed())

		var wantX float64
		for i := 0; i < 50; i++ {
			wantX += 1 * cfg.Force.Delta
		}

		got := e.Bodies().Bodies[0]
		Expect(got.X).To(Equal(wantX))
		Expect(got.Y).To(Equal(0.0))
		Expect(got.VX).To(Equal(1.0))
		Expect(got.VY).To(Equal(0.0))
	})
})

var _ = Describe("Colocated pair", func() {
	It("keeps zero force and zero motion instead of producing NaN", func() {
		bodies := []body.Body{
			{X: 5, Y: 5, Mass: 2, Index: 0},
			{X: 5, Y: 5, Mass: 2, Index: 1},
		}

		cfg := engine.DefaultConfig()
		cfg.SectorExponent = 0
		cfg.Iterations = 5

		e, err := engine.NewWithBodies(cfg, bodies)
		Expect(err).NotTo(HaveOccurred())
		Expect(e.Run()).To(Succeed())

		for _, b := range e.Bodies().Bodies {
			Expect(b.FX).To(Equal(0.0))
			Expect(b.FY).To(Equal(0.0))
			Expect(b.X).To(Equal(5.0))
			Expect(b.Y).To(Equal(5.0))
			Expect(math.IsNaN(b.VX)).To(BeFalse())
		}
	})
})

var _ = Describe("Four-corner leaf symmetry", func() {
	It("keeps the centre of mass stationary for a symmetric four-body configuration", func() {
		bodies := []body.Body{
			{X: -0.5, Y: -0.5, Mass: 1, Index: 0},
			{X: -0.5, Y: 0.5, Mass: 1, Index: 1},
			{X: 0.5, Y: -0.5, Mass: 1, Index: 2},
			{X: 0.5, Y: 0.5, Mass: 1, Index: 3},
		}

		cfg := engine.DefaultConfig()
		cfg.SectorExponent = 0
		cfg.LeafSize = 1
		cfg.Iterations = 1

		e, err := engine.NewWithBodies(cfg, bodies)
		Expect(err).NotTo(HaveOccurred())
		Expect(e.Run()).To(Succeed())

		var cx, cy float64
		for _, b := range e.Bodies().Bodies {
			cx += b.X
			cy += b.Y
		}
		cx /= 4
		cy /= 4
		Expect(cx).To(BeNumerically("~", 0, 1e-9))
		Expect(cy).To(BeNumerically("~", 0, 1e-9))
	})
})

var _ = Describe("Galaxy smoke test", func() {
	It("keeps total energy within 1% of its initial value over ten iterations", func() {
		cfg := engine.DefaultConfig()

		e, err := engine.New(cfg)
		Expect(err).NotTo(HaveOccurred())

		startEnergy := engine.TotalEnergy(e.Bodies(), cfg.Force.G)
		Expect(e.Run()).To(Succeed())
		endEnergy := engine.TotalEnergy(e.Bodies(), cfg.Force.G)

		drift := math.Abs(endEnergy-startEnergy) / math.Abs(startEnergy)
		Expect(drift).To(BeNumerically("<", 0.01))
	})
})

var _ = Describe("Merge correctness across sector counts", func() {
	It("produces closely matching dynamics whether built with one sector or four", func() {
		base := []body.Body{
			{X: -1.5, Y: -1.5, Mass: 3, Index: 0, VX: 0.1},
			{X: 1.5, Y: 1.5, Mass: 4, Index: 1, VY: -0.1},
			{X: -1.2, Y: 1.1, Mass: 2, Index: 2},
			{X: 1.3, Y: -1.4, Mass: 5, Index: 3},
		}

		runWith := func(sectorExponent int) *body.Store {
			bodies := make([]body.Body, len(base))
			copy(bodies, base)

			cfg := engine.DefaultConfig()
			cfg.SectorExponent = sectorExponent
			cfg.Iterations = 20

			e, err := engine.NewWithBodies(cfg, bodies)
			Expect(err).NotTo(HaveOccurred())
			Expect(e.Run()).To(Succeed())
			return e.Bodies()
		}

		singleSector := runWith(0)
		fourSectors := runWith(1)

		for i := range base {
			d := math.Hypot(singleSector.Bodies[i].X-fourSectors.Bodies[i].X, singleSector.Bodies[i].Y-fourSectors.Bodies[i].Y)
			Expect(d).To(BeNumerically("<", 1e-6))
		}
	})
})
