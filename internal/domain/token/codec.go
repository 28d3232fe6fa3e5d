// Package token decodifica el token del proveedor de crédito (Adecash) y genera
// el token interno que se presenta al backend del restaurante.
package token

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/mesa-api/internal/domain"
	"github.com/jhoicas/mesa-api/internal/domain/entity"
)

// DefaultCoreSecret se usa cuando CORE_JWT_SECRET no está configurado.
const DefaultCoreSecret = "default-core-secret"

// RequiredClaims claims obligatorios del token externo.
var RequiredClaims = []string{
	"first_name", "last_name", "curp", "contractor",
	"email", "company", "max_credit_line", "remaining_credit_line",
	"ademozo_tenant_name", "ademozo_tenant",
}

const internalHeader = `{"alg":"HS256","typ":"JWT"}`

// Codec lee tokens externos y emite tokens internos.
type Codec struct {
	coreSecret     string
	providerSecret string
	now            func() time.Time
	parser         *jwt.Parser
}

// Option configura el Codec.
type Option func(*Codec)

// WithProviderSecret exige que el token externo venga firmado HS256 con secret.
func WithProviderSecret(secret string) Option {
	return func(c *Codec) { c.providerSecret = secret }
}

// WithClock reemplaza el reloj (tests).
func WithClock(now func() time.Time) Option {
	return func(c *Codec) { c.now = now }
}

// NewCodec crea el codec. Un coreSecret vacío cae al valor por defecto.
func NewCodec(coreSecret string, opts ...Option) *Codec {
	if coreSecret == "" {
		coreSecret = DefaultCoreSecret
	}
	c := &Codec{
		coreSecret: coreSecret,
		now:        time.Now,
		parser:     jwt.NewParser(jwt.WithPaddingAllowed()),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// UsesDefaultSecret indica si se está usando el secreto por defecto.
func (c *Codec) UsesDefaultSecret() bool {
	return c.coreSecret == DefaultCoreSecret
}

// externalClaims forma tipada de los diez claims obligatorios.
type externalClaims struct {
	FirstName           string          `json:"first_name"`
	LastName            string          `json:"last_name"`
	CURP                string          `json:"curp"`
	Contractor          string          `json:"contractor"`
	Email               string          `json:"email"`
	Company             string          `json:"company"`
	MaxCreditLine       decimal.Decimal `json:"max_credit_line"`
	RemainingCreditLine decimal.Decimal `json:"remaining_credit_line"`
	TenantName          string          `json:"ademozo_tenant_name"`
	Tenant              string          `json:"ademozo_tenant"`
}

// DecodeExternal extrae la identidad del usuario del segmento de claims.
// Falta de cualquier claim obligatorio o tipos incorrectos → domain.ErrTokenDecode.
func (c *Codec) DecodeExternal(tok string) (*entity.UserIdentity, error) {
	payload, err := c.payload(tok)
	if err != nil {
		return nil, err
	}

	var present jwt.MapClaims
	if err := json.Unmarshal(payload, &present); err != nil {
		return nil, fmt.Errorf("%w: claims no son un objeto JSON", domain.ErrTokenDecode)
	}
	for _, name := range RequiredClaims {
		if _, ok := present[name]; !ok {
			return nil, fmt.Errorf("%w: falta el claim %q", domain.ErrTokenDecode, name)
		}
	}

	var claims externalClaims
	if err := json.Unmarshal(payload, &claims); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrTokenDecode, err)
	}

	if c.providerSecret != "" {
		if err := c.verifyProviderSignature(tok); err != nil {
			return nil, err
		}
	}

	return &entity.UserIdentity{
		FirstName:           claims.FirstName,
		LastName:            claims.LastName,
		CURP:                claims.CURP,
		Contractor:          claims.Contractor,
		Email:               claims.Email,
		Company:             claims.Company,
		MaxCreditLine:       claims.MaxCreditLine,
		RemainingCreditLine: claims.RemainingCreditLine,
		TenantName:          claims.TenantName,
		Tenant:              claims.Tenant,
	}, nil
}

// internalClaims claims reducidos del token interno, en el orden en que se serializan.
type internalClaims struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	CURP      string `json:"curp"`
	Tenant    string `json:"tenant"`
}

// EncodeInternal genera el token interno con los claims reducidos. Los tres segmentos van en
// base64 estándar con padding y la firma es base64(header.payload.secret): es un token de
// confianza entre servicios cooperantes, NO una firma criptográfica verificable.
func (c *Codec) EncodeInternal(u entity.UserIdentity) (string, error) {
	payload, err := compactJSON(internalClaims{
		FirstName: u.FirstName,
		LastName:  u.LastName,
		CURP:      u.CURP,
		Tenant:    u.Tenant,
	})
	if err != nil {
		return "", fmt.Errorf("token: serializar claims internos: %w", err)
	}
	enc := base64.StdEncoding
	header := enc.EncodeToString([]byte(internalHeader))
	body := enc.EncodeToString(payload)
	signature := enc.EncodeToString([]byte(header + "." + body + "." + c.coreSecret))
	return header + "." + body + "." + signature, nil
}

// compactJSON serializa sin escapar <, > y & y sin salto de línea final.
func compactJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// IsExpired compara el claim exp con el reloj. Sin exp no expira; si no se puede
// decodificar se considera expirado.
func (c *Codec) IsExpired(tok string) bool {
	payload, err := c.payload(tok)
	if err != nil {
		return true
	}
	var claims jwt.MapClaims
	if err := json.Unmarshal(payload, &claims); err != nil {
		return true
	}
	exp, err := claims.GetExpirationTime()
	if err != nil {
		return true
	}
	if exp == nil {
		return false
	}
	return exp.Time.Before(c.now())
}

// payload decodifica el segmento central aceptando base64url o base64 estándar, con o sin padding.
func (c *Codec) payload(tok string) ([]byte, error) {
	parts := strings.Split(strings.TrimSpace(tok), ".")
	if len(parts) != 3 {
		return nil, fmt.Errorf("%w: se esperaban 3 segmentos, hay %d", domain.ErrTokenDecode, len(parts))
	}
	seg := strings.NewReplacer("+", "-", "/", "_").Replace(parts[1])
	raw, err := c.parser.DecodeSegment(seg)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrTokenDecode, err)
	}
	return raw, nil
}

func (c *Codec) verifyProviderSignature(tok string) error {
	_, err := jwt.ParseWithClaims(tok, jwt.MapClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("método de firma inesperado: %v", t.Header["alg"])
		}
		return []byte(c.providerSecret), nil
	}, jwt.WithoutClaimsValidation(), jwt.WithPaddingAllowed())
	if err != nil {
		return fmt.Errorf("%w: firma del proveedor inválida: %v", domain.ErrTokenDecode, err)
	}
	return nil
}
