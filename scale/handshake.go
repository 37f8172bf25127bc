package scale

import (
	"errors"
	"fmt"

	"github.com/arloliu/go-scales/ble"
	"github.com/arloliu/go-scales/logger"
)

// Handshake gives a Protocol access to the linked transport while it sets up a session.
//
// Every helper wraps transport errors in the matching transport failure, so a Protocol
// can return them unchanged.
type Handshake struct {
	client ble.Client
	notify ble.NotifyHandler
	logger logger.Logger
	writer *commandWriter
}

// Logger returns the driver's logger.
func (h *Handshake) Logger() logger.Logger {
	return h.logger
}

// Service looks up a primary service.
func (h *Handshake) Service(id ble.UUID) (ble.Service, error) {
	svc, err := h.client.Service(id)
	if err != nil || svc == nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrServiceNotFound, id, orNotFound(err))
	}
	h.logger.Debug("got service", "uuid", id)

	return svc, nil
}

// Characteristic looks up a characteristic of svc.
func (h *Handshake) Characteristic(svc ble.Service, id ble.UUID) (ble.Characteristic, error) {
	ch, err := svc.Characteristic(id)
	if err != nil || ch == nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrCharacteristicNotFound, id, orNotFound(err))
	}
	h.logger.Debug("got characteristic", "uuid", id)

	return ch, nil
}

// EnableNotifications writes value to the notification enable descriptor of ch.
func (h *Handshake) EnableNotifications(ch ble.Characteristic, value []byte) error {
	desc, err := ch.Descriptor(ble.CCCDUUID)
	if err != nil || desc == nil {
		return fmt.Errorf("%w: %s on %s: %w", ErrDescriptorNotFound, ble.CCCDUUID, ch.UUID(), orNotFound(err))
	}
	if err := desc.Write(value); err != nil {
		return fmt.Errorf("%w: descriptor %s: %w", ErrWriteFailed, ble.CCCDUUID, err)
	}
	h.logger.Debug("notifications enabled", "uuid", ch.UUID())

	return nil
}

// Subscribe routes notifications of ch to the driver's decoder.
func (h *Handshake) Subscribe(ch ble.Characteristic) error {
	if !ch.CanNotify() {
		return fmt.Errorf("%w: %s", ErrNotifyUnsupported, ch.UUID())
	}
	if err := ch.Subscribe(h.notify); err != nil {
		return fmt.Errorf("%w: subscribe %s: %w", ErrNotifyUnsupported, ch.UUID(), err)
	}
	h.logger.Debug("subscribed", "uuid", ch.UUID())

	return nil
}

// SetCommand selects the characteristic commands are written to.
func (h *Handshake) SetCommand(ch ble.Characteristic) {
	h.writer.setTarget(ch)
}

// Writer returns a CommandWriter for commands the handshake itself must send.
// It fails with ErrCharacteristicNotFound until SetCommand is called.
func (h *Handshake) Writer() CommandWriter {
	return h.writer
}

func orNotFound(err error) error {
	if err == nil {
		return ble.ErrNotFound
	}

	return err
}

// commandWriter writes commands to the selected characteristic and counts them.
type commandWriter struct {
	target  ble.Characteristic
	ack     bool
	metrics *Metrics
}

func (w *commandWriter) setTarget(ch ble.Characteristic) {
	w.target = ch
}

func (w *commandWriter) WriteCommand(data []byte) error {
	if w.target == nil {
		return fmt.Errorf("%w: no command characteristic", ErrCharacteristicNotFound)
	}

	if err := w.target.Write(data, w.ack); err != nil {
		w.metrics.incCommandErr()
		if errors.Is(err, ble.ErrNotConnected) {
			return fmt.Errorf("%w: %w", ErrNotConnected, err)
		}

		return fmt.Errorf("%w: %w", ErrWriteFailed, err)
	}
	w.metrics.incCommandSent()

	return nil
}
