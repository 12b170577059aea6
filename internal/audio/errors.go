package audio

import "errors"

// Pipeline errors surfaced to the caller. None of them is fatal to the host
// process; a new session can always be started after any of these.
var (
	ErrMicrophoneUnavailable     = errors.New("audio: microphone unavailable")
	ErrAuthenticationFailed      = errors.New("audio: recognizer rejected credentials")
	ErrTransportClosedAbnormally = errors.New("audio: streaming transport closed abnormally")
	ErrQuotaExceeded             = errors.New("audio: recognizer quota exceeded")
)

// UserMessage maps a pipeline error to the message shown to the field agent.
func UserMessage(err error) string {
	switch {
	case errors.Is(err, ErrMicrophoneUnavailable):
		return "Impossible d'accéder au microphone. Vérifiez les permissions."
	case errors.Is(err, ErrAuthenticationFailed):
		return "Authentification au service de transcription refusée."
	case errors.Is(err, ErrTransportClosedAbnormally):
		return "Connexion de transcription interrompue, bascule en mode dégradé."
	case errors.Is(err, ErrQuotaExceeded):
		return "Quota de transcription dépassé."
	default:
		return "Erreur de transcription inattendue."
	}
}
