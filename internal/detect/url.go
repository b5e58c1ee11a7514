package detect

import (
	"context"
	"fmt"
	"strings"
)

// URLResolver resuelve la URL del primary actual para decisiones de
// redirect/proxy. Nunca se usa para determinar rol: eso es del detector.
type URLResolver struct {
	detector RoleDetector
	override string // fallback configurado (ej: address del proxy conocido)
	scheme   string
}

// NewURLResolver crea un resolver sobre el detector dado. override puede
// ser "" si no hay fallback configurado.
func NewURLResolver(detector RoleDetector, override string) *URLResolver {
	return &URLResolver{detector: detector, override: override, scheme: "http"}
}

// PrimaryURL devuelve la URL del primary, o "" (sin error) cuando el nodo
// local es él mismo primary. En réplica resuelve, en orden: la dirección
// del marker, el override configurado, o ErrPrimaryUnknown.
func (r *URLResolver) PrimaryURL(ctx context.Context) (string, error) {
	snap, err := r.detector.DetectRole(ctx)
	if err != nil {
		return "", err
	}
	if snap.Role == RolePrimary {
		return "", nil
	}
	if addr := strings.TrimSpace(snap.PrimaryAddr); addr != "" {
		return r.normalize(addr), nil
	}
	if o := strings.TrimSpace(r.override); o != "" {
		return r.normalize(o), nil
	}
	return "", fmt.Errorf("resolve primary url: %w", ErrPrimaryUnknown)
}

// normalize antepone el scheme cuando el marker trae solo un hostname.
func (r *URLResolver) normalize(addr string) string {
	if strings.Contains(addr, "://") {
		return strings.TrimRight(addr, "/")
	}
	return r.scheme + "://" + strings.TrimRight(addr, "/")
}
