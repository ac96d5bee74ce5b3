// Copyright Consensys Software Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0
package circuit

// UpdateDistribution recomputes the distribution graph of every resource
// class.  Each operation contributes the probability 1/mobility to every
// cycle of its window.  Hence, a scheduled operation contributes exactly 1 to
// its cycle.  Operations which consume no functional unit are ignored.
func (p *Circuit) UpdateDistribution() {
	for c := range p.distribution {
		p.distribution[c] = make([]float64, p.latency)
	}
	//
	for i := range p.operations {
		op := &p.operations[i]
		class := op.Class()
		//
		if !class.IsTracked() || op.start < 1 || op.end > p.latency || op.start > op.end {
			continue
		}
		//
		graph := p.distribution[class]
		probability := 1.0 / float64(op.Mobility())
		//
		for cycle := op.start; cycle <= op.end; cycle++ {
			graph[cycle-1] += probability
		}
	}
}

// Distribution returns the expected number of operations of a given class
// which are active in a given cycle.  This is zero for untracked classes, or
// cycles outside the latency budget.
func (p *Circuit) Distribution(class ResourceClass, cycle uint) float64 {
	if !class.IsTracked() || cycle < 1 || cycle > uint(len(p.distribution[class])) {
		return 0
	}
	//
	return p.distribution[class][cycle-1]
}

// DistributionGraph returns a copy of the distribution graph for a given
// class, where the first element corresponds to cycle 1.
func (p *Circuit) DistributionGraph(class ResourceClass) []float64 {
	if !class.IsTracked() {
		return nil
	}
	//
	graph := make([]float64, len(p.distribution[class]))
	copy(graph, p.distribution[class])
	//
	return graph
}
