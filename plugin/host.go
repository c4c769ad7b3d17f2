package plugin

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/medialink/cef-bridge/logging"
	"github.com/medialink/cef-bridge/mediasession"
	"github.com/medialink/cef-bridge/relay"
)

// Native API identifiers, namespaced the way the host expects them.
const (
	APIInitialize            = "medialink.initialize"
	APIShutdown              = "medialink.shutdown"
	APIRegisterEventCallback = "medialink.register_event_callback"
	APIRegisterLogger        = "medialink.register_logger"
	APISetLogLevel           = "medialink.set_log_level"
	APIDispatch              = "medialink.dispatch"
)

// Host owns the session and log registry behind the native API table and
// builds the table itself.
type Host struct {
	log       *zap.Logger
	session   *mediasession.Session
	logs      *relay.Registry
	relayCore *logging.RelayCore

	// The host copies dispatch results synchronously and never frees
	// them, so results go out through one reusable buffer.
	retMu sync.Mutex
	ret   []byte
}

// NewHost wires the native API table to a session, the logger registry,
// and the relay core whose threshold set_log_level adjusts. relayCore
// may be nil when no script log relay is configured.
func NewHost(session *mediasession.Session, logs *relay.Registry, relayCore *logging.RelayCore, log *zap.Logger) *Host {
	if log == nil {
		log = logging.Logger()
	}
	return &Host{
		log:       log.Named("plugin"),
		session:   session,
		logs:      logs,
		relayCore: relayCore,
	}
}

// Session returns the session behind the table.
func (h *Host) Session() *mediasession.Session { return h.session }

// APIs returns the full registration table.
func (h *Host) APIs() []API {
	return []API{
		{Name: APIInitialize, Fn: h.initialize},
		{Name: APIShutdown, Fn: h.shutdown},
		{Name: APIRegisterEventCallback, Args: []ArgType{ArgV8Value}, Fn: h.registerEventCallback},
		{Name: APIRegisterLogger, Args: []ArgType{ArgV8Value}, Fn: h.registerLogger},
		{Name: APISetLogLevel, Args: []ArgType{ArgString}, Fn: h.setLogLevel},
		{Name: APIDispatch, Args: []ArgType{ArgString}, Fn: h.dispatch},
	}
}

// RegisterAll hands every API to the host's registrar. Only the renderer
// process carries a V8 runtime; other process types are a no-op.
func (h *Host) RegisterAll(pt ProcessType, registrar func(API) error) error {
	if pt != ProcessRenderer {
		h.log.Debug("skipping API registration outside the renderer process",
			zap.Int32("process_type", int32(pt)))
		return nil
	}
	for _, api := range h.APIs() {
		if err := registrar(api); err != nil {
			return fmt.Errorf("registering %s: %w", api.Name, err)
		}
	}
	h.log.Info("native API table registered")
	return nil
}

func (h *Host) initialize(args []Arg) string {
	h.session.Reset()
	h.log.Info("bridge initialized")
	return ""
}

func (h *Host) shutdown(args []Arg) string {
	h.logs.Clear()
	h.session.Reset()
	h.log.Info("bridge shut down")
	return ""
}

func (h *Host) registerEventCallback(args []Arg) string {
	if err := h.session.RegisterEventCallback(args[0].Value); err != nil {
		h.log.Error("event callback registration failed", zap.Error(err))
		return ""
	}
	h.log.Debug("event callback registered")
	return ""
}

func (h *Host) registerLogger(args []Arg) string {
	if err := h.logs.Register(args[0].Value); err != nil {
		// The script logger is not wired up yet, so this goes to the
		// local cores only.
		h.log.Error("logger registration failed", zap.Error(err))
		return ""
	}
	h.log.Debug("script logger registered")
	return ""
}

func (h *Host) setLogLevel(args []Arg) string {
	if h.relayCore == nil {
		h.log.Warn("set_log_level called without a relay core")
		return ""
	}
	if err := h.relayCore.SetScriptLevel(args[0].Str); err != nil {
		h.log.Error("bad log level", zap.String("level", args[0].Str), zap.Error(err))
		return ""
	}
	h.log.Debug("script log level changed", zap.String("level", args[0].Str))
	return ""
}

func (h *Host) dispatch(args []Arg) string {
	result := h.session.HandleCommand(args[0].Str)

	h.retMu.Lock()
	defer h.retMu.Unlock()
	h.ret = append(h.ret[:0], result...)
	return string(h.ret)
}
