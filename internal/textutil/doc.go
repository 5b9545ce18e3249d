// Package textutil provides the title handling shared by the list adapters:
// Unicode-aware normalization for identity comparison and token fingerprints
// for suggesting the closest match when an exact lookup fails.
//
// Normalization folds case, compatibility width and diacritics so that
// "Amélie" and "AMELIE" compare equal. Fingerprints are term frequency vectors
// over normalized tokens of three or more characters.
package textutil
