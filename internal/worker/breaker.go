package worker

import (
	"errors"
	"sync"
	"time"
)

// ErrCircuitoAbierto is returned while publishing is suspended after repeated failures.
var ErrCircuitoAbierto = errors.New("circuit breaker is open")

type estadoCircuito int

const (
	circuitoCerrado estadoCircuito = iota // events flow
	circuitoAbierto                       // fast-fail until the cooldown elapses
	circuitoSondeo                        // one probe allowed
)

func (e estadoCircuito) String() string {
	switch e {
	case circuitoCerrado:
		return "closed"
	case circuitoAbierto:
		return "open"
	case circuitoSondeo:
		return "half-open"
	}
	return "unknown"
}

// Circuito keeps a down Redis from adding a network timeout to every posting.
// After umbral consecutive failures it rejects calls for espera, then lets a
// single probe through; a successful probe closes it again.
type Circuito struct {
	mu        sync.Mutex
	estado    estadoCircuito
	fallos    int
	abiertoEn time.Time
	umbral    int
	espera    time.Duration
	ahora     func() time.Time
}

func NuevoCircuito(umbral int, espera time.Duration) *Circuito {
	if umbral <= 0 {
		umbral = 5
	}
	if espera <= 0 {
		espera = 30 * time.Second
	}
	return &Circuito{umbral: umbral, espera: espera, ahora: time.Now}
}

// Estado returns "closed", "open" or "half-open" for /health.
func (c *Circuito) Estado() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.estadoLocked().String()
}

func (c *Circuito) estadoLocked() estadoCircuito {
	if c.estado == circuitoAbierto && c.ahora().Sub(c.abiertoEn) >= c.espera {
		c.estado = circuitoSondeo
	}
	return c.estado
}

// Ejecutar runs fn unless the circuit is open.
func (c *Circuito) Ejecutar(fn func() error) error {
	c.mu.Lock()
	switch c.estadoLocked() {
	case circuitoAbierto:
		c.mu.Unlock()
		return ErrCircuitoAbierto
	case circuitoSondeo:
		// Block other callers until the probe resolves.
		c.estado = circuitoAbierto
		c.abiertoEn = c.ahora()
	}
	c.mu.Unlock()

	err := fn()

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.fallos++
		if c.fallos >= c.umbral || c.estado == circuitoAbierto {
			c.estado = circuitoAbierto
			c.abiertoEn = c.ahora()
		}
		return err
	}
	c.fallos = 0
	c.estado = circuitoCerrado
	return nil
}
