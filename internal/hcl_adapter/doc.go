// Package hcl_adapter loads graph documents into a graph.Arena.
//
// HCL documents are decoded with gohcl into the block structs of schema.go,
// translated into graph.GraphData and rebuilt by graph.Restore, so both
// formats share the same two-phase load: nodes first, then calls and
// connections, then the graphs are marked Ready. Node and function labels
// are local to the document; every node and graph gets a fresh UUID.
//
//	graph "Wood" {
//	  width  = 512
//	  height = 512
//
//	  node "proc" {
//	    type     = "Imaging.PixelProcessor"
//	    function = "rings"
//	  }
//
//	  function "rings" {
//	    expected_output = float
//	    output_node     = "sum"
//	    node "a"   { type = "MathNodes.FloatConstantNode"  props = { Value = 2 } }
//	    node "sum" { type = "MathNodes.AddNode" }
//	    connection {
//	      from  = "a"
//	      to    = "sum"
//	      input = 1
//	    }
//	  }
//	}
//
// JSON documents written by graph.Marshal are loaded as they are.
package hcl_adapter
