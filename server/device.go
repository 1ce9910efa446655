package server

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/viant/mcp-protocol/schema"

	"github.com/viant/cloudanchor/codelab"
	"github.com/viant/cloudanchor/manager"
	"github.com/viant/cloudanchor/session"
)

// Device is the state behind one MCP connection.
type Device struct {
	ID         string
	Controller *codelab.Controller
	Session    *session.Session
	Messages   *codelab.Recorder

	cancel    context.CancelFunc
	closeOnce sync.Once
}

// Status returns a snapshot of the device.
func (d *Device) Status() DeviceStatus {
	return DeviceStatus{
		Device:   d.ID,
		Status:   d.Controller.Status(),
		Frames:   d.Session.Frames(),
		Messages: d.Messages.Messages(),
	}
}

// Close stops the frame loop and disconnects the device.
func (d *Device) Close() {
	d.cancel()
}

func (s *Server) connect(notifier *Logger) *Device {
	id := uuid.NewString()
	logger := s.logger.WithValues("device", id)
	runCtx, cancel := context.WithCancel(s.ctx)

	m := manager.New(s.service,
		manager.WithLogger(logger),
		manager.WithMetrics(s.operationMetrics))
	recorder := codelab.NewRecorder(s.messageLimit, logger)
	recorder.OnMessage(func(message codelab.Message) {
		var level schema.LoggingLevel = schema.Info
		if message.IsError {
			level = schema.Err
		}
		if err := notifier.Log(runCtx, level, message.Text); err != nil {
			logger.V(1).Info("failed to notify client", "error", err.Error())
		}
	})
	device := &Device{
		ID: id,
		Controller: codelab.New(m, s.codes, recorder, codelab.Options{
			HostTTLDays: s.hostTTLDays,
			Logger:      logger,
		}),
		Session:  session.New(s.service, m, logger),
		Messages: recorder,
		cancel:   cancel,
	}
	s.devices.Put(id, device)
	s.connected.Inc()
	logger.Info("device connected")

	if s.frameInterval >= 0 {
		go device.Session.Run(runCtx, s.frameInterval)
	}
	go func() {
		<-runCtx.Done()
		s.disconnect(device)
	}()
	return device
}

func (s *Server) disconnect(device *Device) {
	device.closeOnce.Do(func() {
		device.cancel()
		device.Controller.Clear()
		s.devices.Delete(device.ID)
		s.connected.Dec()
		s.logger.Info("device disconnected", "device", device.ID, "frames", device.Session.Frames())
	})
}
