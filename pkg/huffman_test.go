package flashfinder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testHuffmanTree() *HuffmanNode {
	root := &HuffmanNode{}
	parseHuffmanLine(0, "0", root)
	parseHuffmanLine(1, "10", root)
	parseHuffmanLine(-1, "110", root)
	parseHuffmanLine(huffmanControlCode, "111", root)
	return root
}

func TestParseHuffmanLine(t *testing.T) {
	root := testHuffmanTree()

	require.NotNil(t, root.NextNodes[0])
	assert.Equal(t, int32(0), root.NextNodes[0].Value)

	node := root.NextNodes[1]
	require.NotNil(t, node)
	require.NotNil(t, node.NextNodes[0])
	assert.Equal(t, int32(1), node.NextNodes[0].Value)
	assert.Equal(t, int32(-1), node.NextNodes[1].NextNodes[0].Value)
	assert.Equal(t, huffmanControlCode, node.NextNodes[1].NextNodes[1].Value)
}

func TestDecodeCompressedValueDelta(t *testing.T) {
	root := testHuffmanTree()

	// Code "10" (+1) at the top of the window.
	var data uint32 = 0b10 << 30
	startBit := 31
	value := decodeCompressedValue(100, data, huffmanControlCode, &startBit, root)
	assert.Equal(t, int32(101), value)
	assert.Equal(t, 29, startBit)
}

func TestDecodeCompressedValueEscaped(t *testing.T) {
	root := testHuffmanTree()

	// Control code "111" then a raw 12-bit value.
	var data uint32 = 0b111<<29 | 1234<<17
	startBit := 31
	value := decodeCompressedValue(100, data, huffmanControlCode, &startBit, root)
	assert.Equal(t, int32(1234), value, "escaped value replaces, not offsets, the previous one")
	assert.Equal(t, 16, startBit)
}

func TestDecodeCompressedValueSequence(t *testing.T) {
	root := testHuffmanTree()

	// "10" (+1) then "110" (-1) then "0" (+0) packed from bit 31 down.
	var data uint32 = 0b101100 << 26
	startBit := 31

	value := decodeCompressedValue(10, data, huffmanControlCode, &startBit, root)
	assert.Equal(t, int32(11), value)
	value = decodeCompressedValue(value, data, huffmanControlCode, &startBit, root)
	assert.Equal(t, int32(10), value)
	value = decodeCompressedValue(value, data, huffmanControlCode, &startBit, root)
	assert.Equal(t, int32(10), value)
	assert.Equal(t, 25, startBit)
}
