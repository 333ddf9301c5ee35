// Package pipelining provides a pipeline definition.
package pipelining

import (
	"github.com/michelleyho/ofs-platform-afu-bbb/sim"
)

// HookPosPipelineAccept marks when an element enters the pipeline.
var HookPosPipelineAccept = &sim.HookPos{Name: "Pipeline Accept"}

// HookPosPipelineExit marks when an element leaves the pipeline.
var HookPosPipelineExit = &sim.HookPos{Name: "Pipeline Exit"}

// PipelineItem is an item that can pass through a pipeline.
type PipelineItem interface {
	TaskID() string
}

// Pipeline allows simulation designers to define pipeline structures.
type Pipeline interface {
	sim.Named
	sim.Hookable

	// Tick moves elements in the pipeline forward. Elements leave the
	// pipeline in the order they were accepted.
	Tick() (madeProgress bool)

	// CanAccept checks if the pipeline can accept a new element.
	CanAccept() bool

	// Accept adds an element to the pipeline. If the first pipeline stage is
	// currently occupied, this function panics.
	Accept(elem PipelineItem)

	// Clear discards all the items that are currently in the pipeline.
	Clear()
}

type pipelineStageInfo struct {
	elem      PipelineItem
	cycleLeft int
	seq       uint64
}

type pipelineImpl struct {
	sim.HookableBase

	name            string
	width           int
	numStage        int
	cyclePerStage   int
	postPipelineBuf sim.Buffer
	stages          [][]pipelineStageInfo
	nextSeq         uint64
}

func (p *pipelineImpl) Name() string {
	return p.name
}

// Clear discards all the items in the pipeline.
func (p *pipelineImpl) Clear() {
	p.stages = make([][]pipelineStageInfo, p.width)
	for i := 0; i < p.width; i++ {
		p.stages[i] = make([]pipelineStageInfo, p.numStage)
	}
}

// Tick moves elements in the pipeline forward. Elements leave the pipeline
// in the order they were accepted, regardless of the lane that carries them.
func (p *pipelineImpl) Tick() (madeProgress bool) {
	madeProgress = p.drainExits()

	for lane := 0; lane < p.width; lane++ {
		for i := p.numStage - 1; i >= 0; i-- {
			stage := &p.stages[lane][i]

			if stage.elem == nil {
				continue
			}

			if stage.cycleLeft > 0 {
				stage.cycleLeft--
				madeProgress = true
				continue
			}

			if i < p.numStage-1 {
				madeProgress = p.tryMoveToNextStage(lane, i) || madeProgress
			}
		}
	}

	return madeProgress
}

// drainExits moves finished elements to the post-pipeline buffer. Only the
// oldest element of the whole pipeline may leave, so an element that stalls
// at the exit is never overtaken by a younger one in another lane.
func (p *pipelineImpl) drainExits() (madeProgress bool) {
	for {
		lane, ok := p.oldestExitLane()
		if !ok {
			return madeProgress
		}

		if !p.tryMoveToPostPipelineBuffer(&p.stages[lane][p.numStage-1]) {
			return madeProgress
		}

		madeProgress = true
	}
}

// oldestExitLane finds the lane whose last stage holds the oldest element of
// the pipeline, ready to leave. It reports false when the oldest element is
// still in flight.
func (p *pipelineImpl) oldestExitLane() (int, bool) {
	oldestLane, oldestStage := -1, -1
	var oldestSeq uint64

	for lane := 0; lane < p.width; lane++ {
		for i := 0; i < p.numStage; i++ {
			stage := &p.stages[lane][i]
			if stage.elem == nil {
				continue
			}

			if oldestLane < 0 || stage.seq < oldestSeq {
				oldestLane, oldestStage = lane, i
				oldestSeq = stage.seq
			}
		}
	}

	if oldestLane < 0 {
		return 0, false
	}

	if oldestStage < p.numStage-1 ||
		p.stages[oldestLane][oldestStage].cycleLeft > 0 {
		return 0, false
	}

	return oldestLane, true
}

func (p *pipelineImpl) tryMoveToPostPipelineBuffer(
	stage *pipelineStageInfo,
) (succeed bool) {
	if !p.postPipelineBuf.CanPush() {
		return false
	}

	p.InvokeHook(sim.HookCtx{
		Domain: p,
		Pos:    HookPosPipelineExit,
		Item:   stage.elem,
	})

	p.postPipelineBuf.Push(stage.elem)
	stage.elem = nil

	return true
}

func (p *pipelineImpl) tryMoveToNextStage(
	lane int,
	stageNum int,
) (succeed bool) {
	stage := &p.stages[lane][stageNum]
	nextStage := &p.stages[lane][stageNum+1]

	if nextStage.elem != nil {
		return false
	}

	nextStage.elem = stage.elem
	nextStage.cycleLeft = p.cyclePerStage - 1
	nextStage.seq = stage.seq
	stage.elem = nil

	return true
}

// CanAccept checks if the pipeline can accept a new element.
func (p *pipelineImpl) CanAccept() bool {
	if p.numStage == 0 {
		return p.postPipelineBuf.CanPush()
	}

	for lane := 0; lane < p.width; lane++ {
		if p.stages[lane][0].elem == nil {
			return true
		}
	}

	return false
}

// Accept adds an element to the pipeline. If the first pipeline stage is
// currently occupied, this function panics.
func (p *pipelineImpl) Accept(elem PipelineItem) {
	if p.numStage == 0 {
		p.postPipelineBuf.Push(elem)
		return
	}

	for lane := 0; lane < p.width; lane++ {
		if p.stages[lane][0].elem != nil {
			continue
		}

		p.stages[lane][0].elem = elem
		p.stages[lane][0].cycleLeft = p.cyclePerStage - 1
		p.stages[lane][0].seq = p.nextSeq
		p.nextSeq++

		p.InvokeHook(sim.HookCtx{
			Domain: p,
			Pos:    HookPosPipelineAccept,
			Item:   elem,
		})

		return
	}

	panic("pipeline is not free. Use CanAccept before pushing.")
}
