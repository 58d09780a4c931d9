package document

import "chelmassage/models"

// Renderer turns a submitted intake form into a printable document.
type Renderer interface {
	RenderIntake(form models.IntakeForm) ([]byte, error)
}
