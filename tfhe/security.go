// Copyright (c) 2025, Lux Industries Inc
// SPDX-License-Identifier: BSD-3-Clause

package tfhe

import (
	"fmt"
	"io"
	"text/tabwriter"
)

// SecurityLevel represents the target security level
type SecurityLevel int

const (
	// Security128 provides 128-bit classical security
	Security128 SecurityLevel = 128
	// Security128Q provides 128-bit post-quantum security
	Security128Q SecurityLevel = 1128
	// Security192 provides 192-bit classical security
	Security192 SecurityLevel = 192
	// Security192Q provides 192-bit post-quantum security
	Security192Q SecurityLevel = 1192
	// Security256 provides 256-bit classical security
	Security256 SecurityLevel = 256
	// Security256Q provides 256-bit post-quantum security
	Security256Q SecurityLevel = 1256
)

func (l SecurityLevel) String() string {
	switch l {
	case Security128Q, Security192Q, Security256Q:
		return fmt.Sprintf("%d-bit PQ", int(l)-1000)
	}
	return fmt.Sprintf("%d-bit", int(l))
}

// SecurityParams describes a standard binary-FHE parameter set and the
// engine parameters that run at the same ring dimension.
type SecurityParams struct {
	// Name is the parameter set identifier
	Name string
	// Security is the target security level
	Security SecurityLevel
	// LogQ is the log2 of the ciphertext modulus
	LogQ int
	// RingDim is the polynomial ring dimension (N)
	RingDim int
	// LWEDim is the LWE dimension (n)
	LWEDim int
	// BootstrapBase is the decomposition base for bootstrapping
	BootstrapBase int
	// FailureProb is the approximate log2 of the decryption failure probability
	FailureProb int
	// Engine names the ParametersLiteral used for this ring dimension
	Engine string
}

// Standard security parameter sets (LMKCDEY bootstrapping, Gaussian secrets)
var (
	STD128_LMKCDEY = SecurityParams{
		Name:          "STD128_LMKCDEY",
		Security:      Security128,
		LogQ:          28,
		RingDim:       1024,
		LWEDim:        447,
		BootstrapBase: 32,
		FailureProb:   -55,
		Engine:        "PN10QP27",
	}

	STD128Q_LMKCDEY = SecurityParams{
		Name:          "STD128Q_LMKCDEY",
		Security:      Security128Q,
		LogQ:          27,
		RingDim:       1024,
		LWEDim:        483,
		BootstrapBase: 32,
		FailureProb:   -50,
		Engine:        "PN10QP27",
	}

	STD192_LMKCDEY = SecurityParams{
		Name:          "STD192_LMKCDEY",
		Security:      Security192,
		LogQ:          39,
		RingDim:       2048,
		LWEDim:        716,
		BootstrapBase: 32,
		FailureProb:   -60,
		Engine:        "PN11QP54",
	}

	STD256_LMKCDEY = SecurityParams{
		Name:          "STD256_LMKCDEY",
		Security:      Security256,
		LogQ:          30,
		RingDim:       2048,
		LWEDim:        939,
		BootstrapBase: 32,
		FailureProb:   -50,
		Engine:        "PN11QP54",
	}
)

// AllSecurityParams returns all available security parameter sets
func AllSecurityParams() []SecurityParams {
	return []SecurityParams{
		STD128_LMKCDEY,
		STD128Q_LMKCDEY,
		STD192_LMKCDEY,
		STD256_LMKCDEY,
	}
}

// GetSecurityParams returns the SecurityParams for a given name
func GetSecurityParams(name string) (SecurityParams, bool) {
	for _, p := range AllSecurityParams() {
		if p.Name == name {
			return p, true
		}
	}
	return SecurityParams{}, false
}

// Literal returns the engine parameters for this security set.
func (sp SecurityParams) Literal() (ParametersLiteral, error) {
	return LiteralByName(sp.Engine)
}

// ResolveParameters accepts either a security set name such as
// STD128_LMKCDEY or an engine literal name such as PN10QP27.
func ResolveParameters(name string) (ParametersLiteral, error) {
	if sp, ok := GetSecurityParams(name); ok {
		return sp.Literal()
	}
	return LiteralByName(name)
}

// WriteSecurityTable prints every parameter set as an aligned table.
func WriteSecurityTable(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tSECURITY\tN\tn\tlog Q\tBASE\tFAILURE\tENGINE")
	for _, p := range AllSecurityParams() {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\t%d\t2^%d\t%s\n",
			p.Name, p.Security, p.RingDim, p.LWEDim, p.LogQ, p.BootstrapBase, p.FailureProb, p.Engine)
	}
	return tw.Flush()
}
