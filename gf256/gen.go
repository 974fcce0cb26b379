// Copyright 2025 Vadim Vygonets.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build ignore

// Gen writes tables.go: exponent and logarithm tables of the QR field.
//
//	go run gen.go > tables.go
package main

import (
	"fmt"
	"strings"
)

const (
	poly = 0x11d
	α    = 2
)

func main() {
	var exp, log [256]byte
	x := 1
	for i := 0; i < 255; i++ {
		exp[i] = byte(x)
		log[x] = byte(i)
		x *= α
		if x >= 0x100 {
			x ^= poly
		}
	}
	exp[255] = exp[0]

	fmt.Print(`// Copyright 2010 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Code generated by go run gen.go; DO NOT EDIT.

package gf256

// Exponent and logarithm tables of GF(2⁸) modulo x⁸+x⁴+x³+x²+1
// (0x11d) with generator 2.
var (
`)
	table("expTable", &exp)
	table("logTable", &log)
	fmt.Println(")")
}

func table(name string, t *[256]byte) {
	fmt.Printf("\t%s = [256]byte{\n", name)
	for i := 0; i < len(t); i += 16 {
		s := make([]string, 16)
		for j := range s {
			s[j] = fmt.Sprintf("0x%02x", t[i+j])
		}
		fmt.Printf("\t\t%s,\n", strings.Join(s, ", "))
	}
	fmt.Println("\t}")
}
