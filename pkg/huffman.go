package flashfinder

type HuffmanNode struct {
	NextNodes [2]*HuffmanNode
	Value     int32
}

func parseHuffmanLine(value int32, code string, huffman *HuffmanNode) {
	currentNode := huffman

	var bit uint8
	for bitcount := 0; bitcount < len(code); bitcount++ {
		bit = code[bitcount] - 0x30 // ascii to int

		if currentNode.NextNodes[bit] != nil {
			currentNode = currentNode.NextNodes[bit]
		} else {
			newNode := HuffmanNode{
				NextNodes: [2]*HuffmanNode{nil, nil},
			}
			currentNode.NextNodes[bit] = &newNode
			currentNode = &newNode
		}
	}

	currentNode.Value = value
}

// startBit will be modified to set the new position
func decodeCompressedValue(previousValue int32, data uint32, controlCode int32, startBit *int, huffman *HuffmanNode) int32 {
	currentBit := *startBit

	var wfvalue int32
	currentBit = decodeHuffman(huffman, data, currentBit, &wfvalue)

	if wfvalue == controlCode {
		// Escaped raw value, 12 bits
		wfvalue = (int32(data) >> (currentBit - 11)) & 0x0FFF
		currentBit -= 12
	} else {
		wfvalue = previousValue + wfvalue
	}
	*startBit = currentBit

	return wfvalue
}

func decodeHuffman(huffman *HuffmanNode, code uint32, position int, result *int32) int {
	bit := (code >> position) & 0x01

	finalPos := position

	if (huffman.NextNodes[0] == nil) && (huffman.NextNodes[1] == nil) {
		*result = huffman.Value
	} else {
		finalPos = decodeHuffman(huffman.NextNodes[bit], code, position-1, result)
	}

	return finalPos
}
