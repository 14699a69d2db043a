// Package test holds small helpers shared by the package tests.
package test
