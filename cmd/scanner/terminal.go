package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/language"

	"github.com/jhoicas/Inventario-shipments/internal/application/fulfillment"
	"github.com/jhoicas/Inventario-shipments/internal/domain"
	"github.com/jhoicas/Inventario-shipments/internal/domain/entity"
	"github.com/jhoicas/Inventario-shipments/pkg/i18n"
)

// terminal bucle de lectura de una sesión de escaneo sobre texto plano.
type terminal struct {
	registry *fulfillment.Registry
	sess     *fulfillment.Session
	userID   int64
	tr       *i18n.Translator
	lang     language.Tag
	in       *bufio.Scanner
	out      io.Writer
}

func (t *terminal) run(ctx context.Context) error {
	if err := t.printShipment(ctx); err != nil {
		return err
	}
	for {
		fmt.Fprint(t.out, "> ")
		if !t.in.Scan() {
			// Fin de la entrada: se guarda lo escaneado antes de cerrar.
			if err := t.in.Err(); err != nil {
				return err
			}
			if t.sess.Dirty() {
				rep, err := t.sess.Persist(ctx, false)
				if err != nil {
					return err
				}
				t.printAlerts(rep.Alerts)
			}
			return t.registry.Leave(t.sess.ID(), t.userID, true)
		}
		line := strings.TrimSpace(t.in.Text())
		if line == "" {
			continue
		}
		done, err := t.handle(ctx, line)
		if err != nil {
			return err
		}
		if done {
			return nil
		}
	}
}

// handle procesa una línea; devuelve true cuando la sesión terminó.
func (t *terminal) handle(ctx context.Context, line string) (bool, error) {
	switch line {
	case ":save":
		rep, err := t.sess.Persist(ctx, true)
		if err != nil {
			return false, err
		}
		t.printAlerts(rep.Alerts)
		return false, nil
	case ":next":
		rep, err := t.sess.NextStage(ctx)
		if err != nil {
			return false, err
		}
		t.printAlerts(rep.Save.Alerts)
		if rep.Stage != nil {
			t.printAlerts(rep.Stage.Alerts)
			fmt.Fprintf(t.out, "estado: %s\n", rep.Stage.Reached)
		}
		return false, nil
	case ":reset":
		return false, t.sess.ResetPending()
	case ":quit":
		return t.leave()
	}

	rep, err := t.sess.HandleInput(ctx, line)
	if errors.Is(err, domain.ErrSessionBusy) {
		fmt.Fprintln(t.out, t.tr.Translate(t.lang, i18n.KeySessionBusy))
		return false, nil
	}
	if err != nil {
		return false, err
	}
	t.printAlerts(rep.Alerts)
	if rep.Stage != nil && rep.Stage.Terminal {
		return t.leave()
	}
	return false, nil
}

func (t *terminal) leave() (bool, error) {
	err := t.registry.Leave(t.sess.ID(), t.userID, false)
	if !errors.Is(err, domain.ErrUnsavedChanges) {
		return err == nil, err
	}
	if !confirm(t.in, t.out, t.tr.Translate(t.lang, i18n.KeyLeavingShipment)) {
		return false, nil
	}
	return true, t.registry.Leave(t.sess.ID(), t.userID, true)
}

func (t *terminal) printShipment(ctx context.Context) error {
	s, pending, err := t.sess.Snapshot(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(t.out, "%s (%s) %s\n", s.Code, s.Reference, s.State)
	for _, m := range s.Moves {
		mark := " "
		if m.State == entity.MoveStateDone {
			mark = "x"
		}
		fmt.Fprintf(t.out, "[%s] %-30s %s/%s %s\n", mark, m.ProductName, m.ScannedQuantity.String(), m.Quantity.String(), m.UOM)
	}
	if pending != nil {
		fmt.Fprintf(t.out, "pendiente: %s\n", pending.ProductName)
	}
	return nil
}

func (t *terminal) printAlerts(alerts []fulfillment.Alert) {
	for _, a := range alerts {
		prefix := ""
		if a.Level != fulfillment.LevelInfo {
			prefix = strings.ToUpper(string(a.Level)) + ": "
		}
		fmt.Fprintln(t.out, prefix+t.tr.Translate(t.lang, a.Key, a.Args...))
	}
}

// confirm pregunta sí/no; cualquier respuesta distinta de s/si/y/yes es no.
func confirm(in *bufio.Scanner, out io.Writer, question string) bool {
	fmt.Fprintf(out, "%s [s/N] ", question)
	if !in.Scan() {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(in.Text())) {
	case "s", "si", "sí", "y", "yes":
		return true
	}
	return false
}
