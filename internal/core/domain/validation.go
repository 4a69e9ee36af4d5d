package domain

import (
	"fmt"
	"sort"
	"strings"
)

// FieldErrors porte les échecs de validation champ par champ (l'équivalent
// du flatten().fieldErrors côté front). C'est une erreur comme une autre :
// la couche HTTP la détecte avec errors.As pour répondre 422.
type FieldErrors map[string]string

func (f FieldErrors) Error() string {
	if len(f) == 0 {
		return "validation failed"
	}
	// Ordre stable pour les logs et les tests
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, f[k]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}
