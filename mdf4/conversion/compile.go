package conversion

import (
	"fmt"

	"github.com/mf4kit/mf4kit/errs"
	"github.com/mf4kit/mf4kit/mdf4/block"
)

// Compile reads the conversion block chain reachable from link and compiles
// it into an Expression. An absent link compiles to a bare Arg.
func Compile(src block.Source, link block.Link[block.ChannelConversionBlock]) (Expression, error) {
	if link.IsAbsent() {
		return argNode(), nil
	}

	return compileAt(src, link.Offset())
}

func compileAt(src block.Source, offset uint64) (Expression, error) {
	cc, err := block.ReadChannelConversionBlock(src, offset)
	if err != nil {
		return nil, err
	}

	v := cc.Values
	r := cc.Refs

	switch cc.ConversionType {
	case block.ConversionOneToOne:
		if len(v) != 0 {
			return nil, paramErr(cc.ConversionType, "values", 0, len(v))
		}

		return argNode(), nil

	case block.ConversionLinear:
		if len(v) != 2 {
			return nil, paramErr(cc.ConversionType, "values", 2, len(v))
		}

		return call("+", call("*", argNode(), valueNode(v[1])), valueNode(v[0])), nil

	case block.ConversionRational:
		if len(v) != 6 {
			return nil, paramErr(cc.ConversionType, "values", 6, len(v))
		}

		x2 := call("*", argNode(), argNode())
		num := call("+", call("*", valueNode(v[0]), x2), call("*", valueNode(v[1]), argNode()), valueNode(v[2]))
		den := call("+", call("*", valueNode(v[3]), x2), call("*", valueNode(v[4]), argNode()), valueNode(v[5]))

		return call("/", num, den), nil

	case block.ConversionValueToValueInterp, block.ConversionValueToValueNearest:
		if len(v)%2 != 0 {
			return nil, paramErr(cc.ConversionType, "values", -1, len(v))
		}

		keys, values := deinterleave(v)
		name := "lerp"
		if cc.ConversionType == block.ConversionValueToValueNearest {
			name = "nearest"
		}

		return call(name, argNode(), valuesNode(keys), valuesNode(values)), nil

	case block.ConversionValueRangeToValue:
		if len(v) < 1 || len(v)%3 != 1 {
			return nil, paramErr(cc.ConversionType, "values", -1, len(v))
		}

		n := (len(v) - 1) / 3
		mins := make([]float64, n)
		maxs := make([]float64, n)
		values := make([]float64, n)
		for i := 0; i < n; i++ {
			mins[i] = v[3*i]
			maxs[i] = v[3*i+1]
			values[i] = v[3*i+2]
		}

		values = append(values, v[len(v)-1]) // trailing entry is the default

		return call("range_map", argNode(), valuesNode(mins), valuesNode(maxs), valuesNode(values)), nil

	case block.ConversionValueToText:
		if len(r) != len(v) && len(r) != len(v)+1 {
			return nil, paramErr(cc.ConversionType, "refs", -1, len(r))
		}

		primary := r[:len(v)]
		args := make([]Expression, 0, 2+len(primary))
		args = append(args, argNode(), valuesNode(v))
		for _, ref := range primary {
			refExpr, err := compileRef(src, ref)
			if err != nil {
				return nil, err
			}

			args = append(args, refExpr)
		}

		mapExpr := call("map", args...)

		if len(r) == len(v)+1 && r[len(v)] != 0 {
			fallback, err := compileRef(src, r[len(v)])
			if err != nil {
				return nil, err
			}

			return call("??", mapExpr, fallback), nil
		}

		return mapExpr, nil

	case block.ConversionValueRangeToText:
		if len(v)%2 != 0 {
			return nil, paramErr(cc.ConversionType, "values", -1, len(v))
		}

		n := len(v) / 2
		if len(r) != n && len(r) != n+1 {
			return nil, paramErr(cc.ConversionType, "refs", -1, len(r))
		}

		mins, maxs := deinterleave(v)
		primary := r[:n]
		args := make([]Expression, 0, 3+len(primary))
		args = append(args, argNode(), valuesNode(mins), valuesNode(maxs))
		for _, ref := range primary {
			refExpr, err := compileRef(src, ref)
			if err != nil {
				return nil, err
			}

			args = append(args, refExpr)
		}

		mapExpr := call("map_range", args...)

		if len(r) == n+1 && r[n] != 0 {
			fallback, err := compileRef(src, r[n])
			if err != nil {
				return nil, err
			}

			return call("??", mapExpr, fallback), nil
		}

		return mapExpr, nil

	default:
		return call("unsupported"), nil
	}
}

// compileRef resolves a ##CC ref link: a ##TX child becomes a literal Text
// node, a ##CC child recurses. A zero ref (absent) compiles to an empty Text,
// since the wire format does not document what an absent ref should mean.
func compileRef(src block.Source, offset uint64) (Expression, error) {
	if offset == 0 {
		return textNode(""), nil
	}

	magic, err := block.RefMagic(src, offset)
	if err != nil {
		return nil, err
	}

	switch magic {
	case "##TX":
		text, err := block.ReadTextBlock(src, offset)
		if err != nil {
			return nil, err
		}

		return textNode(text.Data), nil

	case "##CC":
		return compileAt(src, offset)

	default:
		return nil, fmt.Errorf("%w: conversion ref at 0x%x has unexpected magic %q", errs.ErrMagicMismatch, offset, magic)
	}
}

// deinterleave splits an even-length [k0, v0, k1, v1, …] slice into its even-
// and odd-indexed halves.
func deinterleave(v []float64) (evens, odds []float64) {
	n := len(v) / 2
	evens = make([]float64, n)
	odds = make([]float64, n)

	for i := 0; i < n; i++ {
		evens[i] = v[2*i]
		odds[i] = v[2*i+1]
	}

	return evens, odds
}

func paramErr(ct block.ConversionType, field string, want, got int) error {
	if want < 0 {
		return fmt.Errorf("%w: conversion_type=%s has %d %s", errs.ErrInvalidConversionParams, ct, got, field)
	}

	return fmt.Errorf("%w: conversion_type=%s wants %d %s, found %d", errs.ErrInvalidConversionParams, ct, want, field, got)
}
